package utils

import "testing"

func TestJobLockScriptsCompile(t *testing.T) {
	// Compile-time smoke test: scripts should be initialized.
	if jobLockAcquireScript == nil || jobLockReleaseScript == nil {
		t.Fatalf("expected scripts to be initialized")
	}
}
