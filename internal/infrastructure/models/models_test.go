package models

import "testing"

func TestAllListsEveryTable(t *testing.T) {
	all := All()
	if len(all) != 8 {
		t.Fatalf("expected 8 models got %d", len(all))
	}
	if _, ok := all[0].(*User); !ok {
		t.Fatal("users must migrate first")
	}
	if _, ok := all[len(all)-1].(*IdentityVerification); !ok {
		t.Fatal("identity verifications migrate last")
	}
}
