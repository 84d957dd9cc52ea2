package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"tontine.backend/pkg/crypto"
)

var (
	printfFn       = fmt.Printf
	generateHashFn = generateHash
	fatalfFn       = log.Fatalf
	getenvFn       = os.Getenv
)

var errNoPassword = errors.New("usage: hash-gen <password> (or set SEED_PASSWORD)")

func resolvePassword(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if p := getenvFn("SEED_PASSWORD"); p != "" {
		return p, nil
	}
	return "", errNoPassword
}

func generateHash(password string) (string, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return "", err
	}
	if !crypto.CheckPassword(password, hash) {
		return "", errors.New("generated hash does not verify")
	}
	return hash, nil
}

func main() {
	password, err := resolvePassword(os.Args[1:])
	if err != nil {
		fatalfFn("%v", err)
		return
	}

	hash, err := generateHashFn(password)
	if err != nil {
		fatalfFn("Failed to hash password: %v", err)
		return
	}

	printfFn("Bcrypt Hash: %s\n", hash)
}
