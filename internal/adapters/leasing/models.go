package leasing

import "time"

type Lease struct {
	LeaseID          string     `json:"leaseId"`
	LeaseNumber      string     `json:"leaseNumber"`
	RentalPropertyID string     `json:"rentalPropertyId"`
	Type             string     `json:"type"`
	Status           string     `json:"status"`
	LeaseStartDate   *time.Time `json:"leaseStartDate,omitempty"`
	LeaseEndDate     *time.Time `json:"leaseEndDate,omitempty"`
	TerminationDate  *time.Time `json:"terminationDate,omitempty"`
	NoticeGivenBy    string     `json:"noticeGivenBy,omitempty"`
	Tenants          []Contact  `json:"tenants,omitempty"`
	RentInfo         *RentInfo  `json:"rentInfo,omitempty"`
}

type RentInfo struct {
	CurrentRent   float64 `json:"currentRent"`
	VAT           float64 `json:"vat"`
	AdditionalFee float64 `json:"additionalFee,omitempty"`
}

type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number,omitempty"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
}

type PhoneNumber struct {
	PhoneNumber  string `json:"phoneNumber"`
	Type         string `json:"type,omitempty"`
	IsMainNumber bool   `json:"isMainNumber"`
}

type Contact struct {
	ContactCode                string        `json:"contactCode"`
	ContactKey                 string        `json:"contactKey,omitempty"`
	FirstName                  string        `json:"firstName"`
	LastName                   string        `json:"lastName"`
	FullName                   string        `json:"fullName"`
	NationalRegistrationNumber string        `json:"nationalRegistrationNumber,omitempty"`
	BirthDate                  *time.Time    `json:"birthDate,omitempty"`
	Address                    *Address      `json:"address,omitempty"`
	PhoneNumbers               []PhoneNumber `json:"phoneNumbers,omitempty"`
	EmailAddress               string        `json:"emailAddress,omitempty"`
	IsTenant                   bool          `json:"isTenant"`
}

// ContactSummary is one hit from the contact search.
type ContactSummary struct {
	ContactCode string `json:"contactCode"`
	FullName    string `json:"fullName"`
}

type RentalBlock struct {
	ID               string     `json:"id"`
	RentalPropertyID string     `json:"rentalPropertyId"`
	BlockReason      string     `json:"blockReason"`
	FromDate         *time.Time `json:"fromDate,omitempty"`
	ToDate           *time.Time `json:"toDate,omitempty"`
}

// LeaseFilter narrows lease listings. Zero value returns current leases only.
type LeaseFilter struct {
	IncludeUpcomingLeases   bool
	IncludeTerminatedLeases bool
	IncludeContacts         bool
}
