// Package main provides a one-shot utility for battle grant key generation.
//
// It emits the asymmetric keypair used to sign and verify battle grants.
package main

import (
	"os"

	"github.com/ashveldt/wartide/internal/platform/config"
	"github.com/ashveldt/wartide/internal/tools/grantkey"
)

func main() {
	if err := grantkey.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate battle grant key: %v", err)
	}
}
