package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	digest, err := Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if digest == "s3cret" || digest == "" {
		t.Fatalf("digest should not be empty or plaintext")
	}
	if !Verify("s3cret", digest) {
		t.Fatalf("expected digest to verify against its plaintext")
	}
	if Verify("wrong", digest) {
		t.Fatalf("expected mismatch to verify false")
	}
}

func TestHash_DigestsDiffer(t *testing.T) {
	d1, err := Hash("same-input")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	d2, err := Hash("same-input")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	// salt is embedded, so two digests of the same input differ
	if d1 == d2 {
		t.Fatalf("expected distinct digests for the same input")
	}
	if !Verify("same-input", d1) || !Verify("same-input", d2) {
		t.Fatalf("both digests should verify")
	}
}
