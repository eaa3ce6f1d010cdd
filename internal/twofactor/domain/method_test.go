package domain

import "testing"

func TestParseMethodType(t *testing.T) {
	valid := map[string]MethodType{
		"TOTP":          MethodTOTP,
		"totp":          MethodTOTP,
		" authenticator ": MethodAuthenticator,
		"SMS":           MethodSMS,
		"email":         MethodEmail,
	}
	for in, want := range valid {
		got, err := ParseMethodType(in)
		if err != nil {
			t.Errorf("ParseMethodType(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseMethodType(%q) = %q, want %q", in, got, want)
		}
	}
	for _, in := range []string{"", "push", "TOTP2"} {
		if _, err := ParseMethodType(in); err == nil {
			t.Errorf("ParseMethodType(%q) should fail", in)
		}
	}
}

func TestUsesTOTPSecret(t *testing.T) {
	if !MethodTOTP.UsesTOTPSecret() || !MethodAuthenticator.UsesTOTPSecret() {
		t.Error("TOTP and AUTHENTICATOR should use a TOTP secret")
	}
	if MethodSMS.UsesTOTPSecret() || MethodEmail.UsesTOTPSecret() {
		t.Error("SMS and EMAIL should not use a TOTP secret")
	}
}
