// Package services defines the business logic for intake, the repair
// workflow, the checklist catalog, shop settings, and staff auth. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Intake validation errors. All of them are raised before any row is written.
var (
	// ErrMissingVendorName is returned when an intake omits the vendor name.
	ErrMissingVendorName = errors.New("vendor name is required")

	// ErrMissingClientName is returned when an intake omits the client name.
	ErrMissingClientName = errors.New("client name is required")

	// ErrMissingClientIssue is returned when an intake omits the reported issue.
	ErrMissingClientIssue = errors.New("client issue is required")

	// ErrInvalidVehicleType is returned when the vehicle type is not one of
	// the concrete types (bike, scooter).
	ErrInvalidVehicleType = errors.New("vehicle type must be bike or scooter")

	// ErrInvalidVerdict is returned when a checklist response carries a value
	// other than ok or ng.
	ErrInvalidVerdict = errors.New("checklist response must be ok or ng")

	// ErrInvalidDecision is returned when the client decision is outside the
	// allowed set (accepted, max_price, detailed_quote).
	ErrInvalidDecision = errors.New("invalid client decision")

	// ErrInvalidMaxPrice is returned when a supplied max price is negative.
	ErrInvalidMaxPrice = errors.New("max price must not be negative")

	// ErrMissingMaxPrice is returned when the decision is max_price but no
	// ceiling amount was provided.
	ErrMissingMaxPrice = errors.New("max price is required for the max_price decision")
)

// Workflow and catalog errors.
var (
	// ErrRepairNotFound indicates that the requested repair does not exist.
	ErrRepairNotFound = errors.New("repair not found")

	// ErrInvalidStatus is returned when a status change targets an unknown
	// workflow state.
	ErrInvalidStatus = errors.New("invalid repair status")

	// ErrResponseNotFound indicates that a work-report note targeted a
	// checklist response that does not belong to the repair.
	ErrResponseNotFound = errors.New("checklist response not found")

	// ErrClientEmailMissing is returned when a user-triggered email is
	// requested for a client without an email address.
	ErrClientEmailMissing = errors.New("client has no email address")

	// ErrItemNotFound indicates that the requested checklist item does not exist.
	ErrItemNotFound = errors.New("checklist item not found")

	// ErrTemplateNotFound indicates that the requested repair template does not exist.
	ErrTemplateNotFound = errors.New("repair template not found")

	// ErrInvalidItem is returned when a checklist-item payload fails
	// validation (blank names, negative estimates, bad applicability).
	ErrInvalidItem = errors.New("invalid checklist item")

	// ErrInvalidTemplate is returned when a template payload fails validation.
	ErrInvalidTemplate = errors.New("invalid repair template")

	// ErrInvalidRate is returned when an hourly-rate update is not a positive
	// amount.
	ErrInvalidRate = errors.New("hourly rate must be positive")
)

// Auth errors.
var (
	// ErrEmailTaken is returned when a signup reuses an existing account email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for unknown emails and wrong
	// passwords alike, so login probes cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates that the authenticated user no longer exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrWeakPassword is returned when a signup password is shorter than the
	// minimum length.
	ErrWeakPassword = errors.New("password too short")
)
