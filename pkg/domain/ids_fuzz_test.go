package domain

import "testing"

// FuzzParsePubkey checks that parsing never panics and that every accepted
// key survives a String round trip.
func FuzzParsePubkey(f *testing.F) {
	f.Add("")
	f.Add("11111111111111111111111111111111")
	f.Add("So11111111111111111111111111111111111111112")
	f.Add("'; DROP TABLE accounts;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		key, err := ParsePubkey(input)
		if err != nil {
			return
		}
		again, err := ParsePubkey(key.String())
		if err != nil {
			t.Fatalf("accepted key failed round trip: %v", err)
		}
		if again != key {
			t.Fatal("round trip changed key")
		}
	})
}
