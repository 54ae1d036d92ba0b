// File: internal/domain/models/auth_dtos.go
package models

// LoginState is the externally visible outcome of a credential submission.
type LoginState string

const (
	LoginStateAuthenticated LoginState = "AUTHENTICATED"
	LoginStateNeedsSetup    LoginState = "NEEDS_2FA_SETUP"
	LoginStatePending2FA    LoginState = "TWOFA_PENDING"
)

// LoginRequest carries the credential step of a login.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
	// DeviceToken is the trusted-device cookie value, if the client has one.
	DeviceToken string `json:"device_token"`
}

// TwoFactorSubmitRequest carries the second-factor step.
type TwoFactorSubmitRequest struct {
	ChallengeToken string `json:"challenge_token" binding:"required"`
	Code           string `json:"code" binding:"required"`
	TrustDevice    bool   `json:"trust_device"`
	DeviceName     string `json:"device_name"`
}

// ResendCodeRequest asks for a fresh emailed code on a live challenge.
type ResendCodeRequest struct {
	ChallengeToken string `json:"challenge_token" binding:"required"`
}

// SetupBeginRequest selects the method a first-time user is enrolling.
type SetupBeginRequest struct {
	ChallengeToken string `json:"challenge_token" binding:"required"`
	Method         string `json:"method" binding:"required"`
}

// SetupCompleteRequest verifies the enrollment with a first code.
type SetupCompleteRequest struct {
	ChallengeToken string `json:"challenge_token" binding:"required"`
	Code           string `json:"code" binding:"required"`
	TrustDevice    bool   `json:"trust_device"`
	DeviceName     string `json:"device_name"`
}

// LoginResult is what the login service hands back to the transport layer.
type LoginResult struct {
	State LoginState `json:"state"`
	User  *User      `json:"-"`

	// SessionToken is set only when State is AUTHENTICATED.
	SessionToken string `json:"session_token,omitempty"`
	// ChallengeToken references the pending challenge for the follow-up
	// submission. Set for TWOFA_PENDING and NEEDS_2FA_SETUP.
	ChallengeToken string `json:"challenge_token,omitempty"`
	// MethodHint tells the client which factor(s) to prompt for.
	MethodHint TwoFactorMethod `json:"method_hint,omitempty"`
	// EmailCodeSent reports whether a code was dispatched as part of the
	// challenge; false with MethodHint both means the client should steer
	// the user to the authenticator path.
	EmailCodeSent bool `json:"email_code_sent,omitempty"`
	// DeviceToken is a freshly issued trusted-device token, present only
	// when the caller opted in during a successful verification.
	DeviceToken string `json:"device_token,omitempty"`
}

// SetupInfo is returned by the provisioning surface when enrollment begins.
type SetupInfo struct {
	Method          TwoFactorMethod `json:"method"`
	ProvisioningURI string          `json:"provisioning_uri,omitempty"`
	EmailCodeSent   bool            `json:"email_code_sent"`
}
