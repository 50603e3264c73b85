package propertybase

import (
	"time"

	"onecore/pkg/validation"
)

type Company struct {
	ID                 string `json:"id"`
	PropertyObjectID   string `json:"propertyObjectId,omitempty"`
	Code               string `json:"code"`
	Name               string `json:"name"`
	OrganizationNumber string `json:"organizationNumber,omitempty"`
}

type Property struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Designation  string `json:"designation"`
	Municipality string `json:"municipality,omitempty"`
	Tract        string `json:"tract,omitempty"`
	CompanyCode  string `json:"companyCode,omitempty"`
}

type Building struct {
	ID               string `json:"id"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	BuildingType     string `json:"buildingType,omitempty"`
	ConstructionYear int    `json:"constructionYear,omitempty"`
	PropertyCode     string `json:"propertyCode,omitempty"`
}

type Residence struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	RentalID      string  `json:"rentalId,omitempty"`
	BuildingCode  string  `json:"buildingCode,omitempty"`
	StaircaseCode string  `json:"staircaseCode,omitempty"`
	Floor         string  `json:"floor,omitempty"`
	Area          float64 `json:"area,omitempty"`
	RoomCount     int     `json:"roomCount,omitempty"`
}

type Room struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	ResidenceID string `json:"residenceId,omitempty"`
	RoomType    string `json:"roomType,omitempty"`
}

type ComponentModel struct {
	ID             string `json:"id"`
	ModelName      string `json:"modelName"`
	Manufacturer   string `json:"manufacturer,omitempty"`
	ComponentType  string `json:"componentType,omitempty"`
	WarrantyMonths int    `json:"warrantyMonths,omitempty"`
}

type Component struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	RoomID           string          `json:"roomId"`
	ModelID          string          `json:"modelId,omitempty"`
	SerialNumber     string          `json:"serialNumber,omitempty"`
	Status           string          `json:"status,omitempty"`
	Quantity         int             `json:"quantity,omitempty"`
	InstallationDate *time.Time      `json:"installationDate,omitempty"`
	WarrantyEndDate  *time.Time      `json:"warrantyEndDate,omitempty"`
	Model            *ComponentModel `json:"model,omitempty"`
}

// ComponentInput is the body for creating a component.
type ComponentInput struct {
	RoomID           string     `json:"roomId" validate:"required,notblank"`
	ModelID          string     `json:"modelId" validate:"required,notblank"`
	Name             string     `json:"name" validate:"required,notblank,max=200"`
	SerialNumber     string     `json:"serialNumber,omitempty" validate:"max=100"`
	Quantity         int        `json:"quantity,omitempty" validate:"gte=0,lte=10000"`
	InstallationDate *time.Time `json:"installationDate,omitempty"`
	WarrantyMonths   int        `json:"warrantyMonths,omitempty" validate:"gte=0,lte=600"`
}

// ComponentUpdate carries the mutable component fields; nil means unchanged.
type ComponentUpdate struct {
	Name             *string    `json:"name,omitempty" validate:"omitempty,notblank,max=200"`
	SerialNumber     *string    `json:"serialNumber,omitempty" validate:"omitempty,max=100"`
	Status           *string    `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE MAINTENANCE DECOMMISSIONED"`
	Quantity         *int       `json:"quantity,omitempty" validate:"omitempty,gte=0,lte=10000"`
	InstallationDate *time.Time `json:"installationDate,omitempty"`
}

// OwnerType says what a document is attached to.
type OwnerType string

const (
	OwnerComponent      OwnerType = "component"
	OwnerComponentModel OwnerType = "component-model"
)

// Document is the metadata row pointing at a blob in file storage.
type Document struct {
	ID                  string    `json:"id"`
	FileID              string    `json:"fileId"`
	FileName            string    `json:"fileName,omitempty"`
	ContentType         string    `json:"contentType,omitempty"`
	Size                int64     `json:"size,omitempty"`
	ComponentInstanceID string    `json:"componentInstanceId,omitempty"`
	ComponentModelID    string    `json:"componentModelId,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

type DocumentInput struct {
	FileID              string `json:"fileId"`
	FileName            string `json:"fileName"`
	ContentType         string `json:"contentType"`
	Size                int64  `json:"size"`
	ComponentInstanceID string `json:"componentInstanceId,omitempty"`
	ComponentModelID    string `json:"componentModelId,omitempty"`
}

func (in *ComponentInput) Validate() error { return validation.Validate(in) }

func (in *ComponentUpdate) Validate() error { return validation.Validate(in) }
