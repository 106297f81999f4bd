package models

import "time"

// TestStatus is the result of a manual test run on a device
type TestStatus string

const (
	TestStatusNotTested TestStatus = "not_tested"
	TestStatusPassed    TestStatus = "passed"
	TestStatusFailed    TestStatus = "failed"
)

// Valid reports whether s is one of the known test statuses
func (s TestStatus) Valid() bool {
	switch s {
	case TestStatusNotTested, TestStatusPassed, TestStatusFailed:
		return true
	}
	return false
}

// AutoTestStatus is the result of an automatic asset check
type AutoTestStatus string

const (
	AutoTestStatusNotTested AutoTestStatus = "not_tested"
	AutoTestStatusLoading   AutoTestStatus = "loading"
	AutoTestStatusPassed    AutoTestStatus = "passed"
	AutoTestStatusFailed    AutoTestStatus = "failed"
)

// Valid reports whether s is one of the known auto-test statuses
func (s AutoTestStatus) Valid() bool {
	switch s {
	case AutoTestStatusNotTested, AutoTestStatusLoading, AutoTestStatusPassed, AutoTestStatusFailed:
		return true
	}
	return false
}

// Platform selects which device asset a status refers to
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// Valid reports whether p is ios or android
func (p Platform) Valid() bool {
	return p == PlatformIOS || p == PlatformAndroid
}

// ClientVariantStatus is the operator-side status of a variant.
// Test statuses are client-only; the curated fields mirror VariantState.
type ClientVariantStatus struct {
	VariantID         int64           `json:"variantId"`
	IOSStatus         TestStatus      `json:"iosStatus"`
	AndroidStatus     TestStatus      `json:"androidStatus"`
	IOSAutoStatus     *AutoTestStatus `json:"iosAutoStatus,omitempty"`
	AndroidAutoStatus *AutoTestStatus `json:"androidAutoStatus,omitempty"`
	HumanVerified     bool            `json:"humanVerified"`
	ManualIncorrect   bool            `json:"manualIncorrect"`
	Notes             *string         `json:"notes,omitempty"`
	LastUpdated       time.Time       `json:"lastUpdated"`
}

// NewClientVariantStatus returns the default status of a variant nobody has touched yet
func NewClientVariantStatus(variantID int64, now time.Time) ClientVariantStatus {
	return ClientVariantStatus{
		VariantID:     variantID,
		IOSStatus:     TestStatusNotTested,
		AndroidStatus: TestStatusNotTested,
		LastUpdated:   now,
	}
}
