package errors

import "testing"

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      bool
	}{
		{ErrorTypeNetwork, true},
		{ErrorTypeRateLimit, true},
		{ErrorTypeServerError, true},
		{ErrorTypeClassification, false},
		{ErrorTypeAPI, false},
		{ErrorTypeSigning, false},
		{ErrorTypeFilesystem, false},
		{ErrorTypeParsing, false},
		{ErrorTypeNotFound, false},
		{ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		if got := IsRetryable(tt.errorType); got != tt.want {
			t.Errorf("IsRetryable(%s) = %v, want %v", tt.errorType, got, tt.want)
		}
	}
}

func TestErrorFormat(t *testing.T) {
	err := &Error{Type: ErrorTypeRateLimit, Message: "slow down", Code: 429}
	want := "rate_limit error (code 429): slow down"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if e := New(ErrorTypeNetwork, "boom"); e.Type != ErrorTypeNetwork || e.Code != 0 {
		t.Errorf("New() = %+v", e)
	}
	if e := Newf(ErrorTypeParsing, "bad %s", "json"); e.Message != "bad json" {
		t.Errorf("Newf() message = %q", e.Message)
	}
}
