package keys

import (
	"strings"
	"time"

	strs "onecore/pkg/platform/strings"
	"onecore/pkg/validation"
)

type KeySystem struct {
	ID           string     `json:"id"`
	SystemCode   string     `json:"systemCode"`
	Name         string     `json:"name"`
	Manufacturer string     `json:"manufacturer,omitempty"`
	Type         string     `json:"type"`
	PropertyIDs  []string   `json:"propertyIds,omitempty"`
	IsActive     bool       `json:"isActive"`
	InstalledAt  *time.Time `json:"installationDate,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

type KeySystemInput struct {
	SystemCode   string   `json:"systemCode" validate:"required,notblank,max=50"`
	Name         string   `json:"name" validate:"required,notblank,max=200"`
	Manufacturer string   `json:"manufacturer,omitempty" validate:"max=200"`
	Type         string   `json:"type" validate:"required,oneof=MECHANICAL ELECTRONIC HYBRID"`
	PropertyIDs  []string `json:"propertyIds,omitempty"`
	IsActive     bool     `json:"isActive"`
	Notes        string   `json:"notes,omitempty" validate:"max=2000"`
}

// KeySystemPatch updates only the fields that are set.
type KeySystemPatch struct {
	Name         *string   `json:"name,omitempty" validate:"omitempty,notblank,max=200"`
	Manufacturer *string   `json:"manufacturer,omitempty" validate:"omitempty,max=200"`
	Type         *string   `json:"type,omitempty" validate:"omitempty,oneof=MECHANICAL ELECTRONIC HYBRID"`
	PropertyIDs  *[]string `json:"propertyIds,omitempty"`
	IsActive     *bool     `json:"isActive,omitempty"`
	Notes        *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type Key struct {
	ID                string     `json:"id"`
	KeyName           string     `json:"keyName"`
	KeySequenceNumber int        `json:"keySequenceNumber,omitempty"`
	FlexNumber        int        `json:"flexNumber,omitempty"`
	RentalObjectCode  string     `json:"rentalObjectCode,omitempty"`
	KeyType           string     `json:"keyType"`
	KeySystemID       string     `json:"keySystemId,omitempty"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
}

type KeyInput struct {
	KeyName           string `json:"keyName" validate:"required,notblank,max=100"`
	KeySequenceNumber int    `json:"keySequenceNumber,omitempty" validate:"gte=0"`
	FlexNumber        int    `json:"flexNumber,omitempty" validate:"gte=0,lte=3"`
	RentalObjectCode  string `json:"rentalObjectCode,omitempty" validate:"max=50"`
	KeyType           string `json:"keyType" validate:"required,oneof=LGH PB FS HN MV"`
	KeySystemID       string `json:"keySystemId,omitempty"`
}

type KeyPatch struct {
	KeyName           *string `json:"keyName,omitempty" validate:"omitempty,notblank,max=100"`
	KeySequenceNumber *int    `json:"keySequenceNumber,omitempty" validate:"omitempty,gte=0"`
	FlexNumber        *int    `json:"flexNumber,omitempty" validate:"omitempty,gte=0,lte=3"`
	RentalObjectCode  *string `json:"rentalObjectCode,omitempty" validate:"omitempty,max=50"`
	KeyType           *string `json:"keyType,omitempty" validate:"omitempty,oneof=LGH PB FS HN MV"`
	KeySystemID       *string `json:"keySystemId,omitempty"`
}

// KeyFilter narrows the key listing; empty fields are ignored.
type KeyFilter struct {
	RentalObjectCode string
	KeySystemID      string
}

type KeyLoan struct {
	ID                        string     `json:"id"`
	Keys                      []string   `json:"keys"`
	Contact                   string     `json:"contact"`
	Contact2                  string     `json:"contact2,omitempty"`
	PickedUpAt                *time.Time `json:"pickedUpAt,omitempty"`
	AvailableToNextTenantFrom *time.Time `json:"availableToNextTenantFrom,omitempty"`
	ReturnedAt                *time.Time `json:"returnedAt,omitempty"`
	CreatedBy                 string     `json:"createdBy,omitempty"`
	UpdatedBy                 string     `json:"updatedBy,omitempty"`
	CreatedAt                 *time.Time `json:"createdAt,omitempty"`
}

type KeyLoanInput struct {
	Keys       []string   `json:"keys" validate:"required,min=1,dive,required"`
	Contact    string     `json:"contact" validate:"required,contactcode"`
	Contact2   string     `json:"contact2,omitempty" validate:"omitempty,contactcode"`
	PickedUpAt *time.Time `json:"pickedUpAt,omitempty"`
	CreatedBy  string     `json:"createdBy,omitempty"`
}

// KeyLoanFilter selects loans by key or by borrower; at least one is set.
type KeyLoanFilter struct {
	KeyID   string
	Contact string
}

func (in *KeySystemInput) Normalize() {
	in.SystemCode = strings.TrimSpace(in.SystemCode)
	in.Name = strings.TrimSpace(in.Name)
	in.PropertyIDs = strs.DedupeAndTrim(in.PropertyIDs)
}

func (in *KeySystemInput) Validate() error { return validation.Validate(in) }

func (in *KeySystemPatch) Normalize() {
	in.Name = strs.TrimSpacePtr(in.Name)
	in.Manufacturer = strs.TrimSpacePtr(in.Manufacturer)
	in.PropertyIDs = strs.DedupeAndTrimPtr(in.PropertyIDs)
}

func (in *KeySystemPatch) Validate() error { return validation.Validate(in) }

func (in *KeyInput) Validate() error { return validation.Validate(in) }

func (in *KeyPatch) Normalize() {
	in.KeyName = strs.TrimSpacePtr(in.KeyName)
	in.RentalObjectCode = strs.TrimSpacePtr(in.RentalObjectCode)
}

func (in *KeyPatch) Validate() error { return validation.Validate(in) }

func (in *KeyLoanInput) Validate() error { return validation.Validate(in) }
