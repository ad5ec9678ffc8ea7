package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
)

// Generates a value for AUTHENTICATOR_CLIENT_SECRET.
func main() {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(base64.RawURLEncoding.EncodeToString(buf))
}
