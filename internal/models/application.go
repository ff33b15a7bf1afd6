package models

import "time"

// ApplicationInput holds the validated, normalized fields of a grant
// application as submitted by the applicant.
type ApplicationInput struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	StreetAddress string `json:"streetAddress,omitempty"`
	Zip           string `json:"zip,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state"`

	Gender            string `json:"gender"`
	DateOfBirth       string `json:"dateOfBirth"` // YYYY-MM-DD
	Ethnicity         string `json:"ethnicity"`
	CitizenshipStatus string `json:"citizenshipStatus"`

	Email string `json:"email"`
	Phone string `json:"phone"`

	MonthlyIncome    float64 `json:"monthlyIncome"`
	HousingStatus    string  `json:"housingStatus"`
	EmploymentStatus string  `json:"employmentStatus"`

	FundingType        string `json:"fundingType,omitempty"`
	GrantAmount        string `json:"grantAmount"`
	PurposeDescription string `json:"purposeDescription"`
	ReferredBy         string `json:"referredBy"`

	// Filename or data URL; opaque to the service.
	DriverLicenseFront string `json:"driverLicenseFront,omitempty"`
	DriverLicenseBack  string `json:"driverLicenseBack,omitempty"`
}

// Application is a stored application. It is never modified after insert.
type Application struct {
	ID string `json:"id"`
	ApplicationInput
	CreatedAt time.Time `json:"createdAt"`
}

func (a *Application) FullName() string {
	return a.FirstName + " " + a.LastName
}
