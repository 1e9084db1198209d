package users

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("0mar.Duadu!", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	ok, err := CheckPassword("0mar.Duadu!", hash)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	ok, err = CheckPassword("wrong", hash)
	if err != nil {
		t.Fatalf("unexpected error on mismatch: %v", err)
	}
	if ok {
		t.Fatal("expected mismatch")
	}
}

func TestCheckPassword_GarbageHash(t *testing.T) {
	if _, err := CheckPassword("anything", "not-a-bcrypt-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestIsStrongPassword(t *testing.T) {
	strong := []string{"0mar.Duadu!", "Aa1!aaaa", "Sup3r$ecret"}
	weak := []string{"", "sh1A!", "alllower1!", "ALLUPPER1!", "NoDigits!!", "NoSymbol11A", "Aa1!"}

	for _, p := range strong {
		if !isStrongPassword(p) {
			t.Errorf("expected %q to be strong", p)
		}
	}
	for _, p := range weak {
		if isStrongPassword(p) {
			t.Errorf("expected %q to be weak", p)
		}
	}
}
