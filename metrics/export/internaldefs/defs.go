// Package internaldefs holds the shared counter catalog for the metric
// exporters. Names follow the <service>_<event>_total convention.
package internaldefs

import (
	"github.com/thanhldev/accountd"
)

// CounterDef ties a [accountd.MetricID] to its exported name and help text.
type CounterDef struct {
	ID   accountd.MetricID
	Name string
	Help string
}

// CounterDefs lists every engine counter in export order.
var CounterDefs = []CounterDef{
	{ID: accountd.MetricRegisterSuccess, Name: "accountd_register_success_total", Help: "Completed registrations."},
	{ID: accountd.MetricRegisterDuplicate, Name: "accountd_register_duplicate_total", Help: "Registrations rejected for a taken username or email."},
	{ID: accountd.MetricRegisterDeliveryFailure, Name: "accountd_register_delivery_failure_total", Help: "Registrations rolled back after failed code delivery."},
	{ID: accountd.MetricOTPIssued, Name: "accountd_otp_issued_total", Help: "Verification challenges issued."},
	{ID: accountd.MetricOTPVerified, Name: "accountd_otp_verified_total", Help: "Successful email verifications."},
	{ID: accountd.MetricOTPFailure, Name: "accountd_otp_failure_total", Help: "Rejected verification codes."},
	{ID: accountd.MetricLoginSuccess, Name: "accountd_login_success_total", Help: "Successful login attempts."},
	{ID: accountd.MetricLoginFailure, Name: "accountd_login_failure_total", Help: "Failed login attempts."},
	{ID: accountd.MetricLoginUnverified, Name: "accountd_login_unverified_total", Help: "Logins refused pending email verification."},
	{ID: accountd.MetricResetRequest, Name: "accountd_reset_request_total", Help: "Password reset challenges issued."},
	{ID: accountd.MetricResetSuccess, Name: "accountd_reset_success_total", Help: "Completed password resets."},
	{ID: accountd.MetricResetFailure, Name: "accountd_reset_failure_total", Help: "Rejected password resets."},
	{ID: accountd.MetricAvatarUpload, Name: "accountd_avatar_upload_total", Help: "Stored avatar uploads."},
	{ID: accountd.MetricAccountDisabled, Name: "accountd_account_disabled_total", Help: "Administrative account disables."},
	{ID: accountd.MetricAccountDeleted, Name: "accountd_account_deleted_total", Help: "Permanent account deletions."},
}
