package presence

import (
	"testing"

	"github.com/pi-agent/pi-messenger/internal/errs"
)

func TestValidateNameAccepts(t *testing.T) {
	for _, name := range []string{"a", "orbit-otter", "agent_42", "A-B-C"} {
		if err := ValidateName(name); err != nil {
			t.Fatalf("ValidateName(%q) = %v, want nil", name, err)
		}
	}
}

func TestValidateNameRejectsLeadingHyphen(t *testing.T) {
	err := ValidateName("-leading")
	if kind, ok := errs.As(err); !ok || kind != errs.InvalidName {
		t.Fatalf("got %v", err)
	}
}

func TestValidateNameRejectsEmpty(t *testing.T) {
	if kind, ok := errs.As(ValidateName("")); !ok || kind != errs.InvalidName {
		t.Fatalf("got %v", ValidateName(""))
	}
}

func TestValidateNameRejectsTooLong(t *testing.T) {
	long := ""
	for i := 0; i < 51; i++ {
		long += "a"
	}
	if kind, ok := errs.As(ValidateName(long)); !ok || kind != errs.InvalidName {
		t.Fatalf("got %v", ValidateName(long))
	}
}

func TestValidateNameRejectsInvalidChar(t *testing.T) {
	if kind, ok := errs.As(ValidateName("bad name")); !ok || kind != errs.InvalidName {
		t.Fatalf("got %v", ValidateName("bad name"))
	}
}
