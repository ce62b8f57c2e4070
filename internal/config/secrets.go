// internal/config/secrets.go
//
// Vault reference resolution.
//
// A config value of the form
//
//	vault:<mount>/<path>#<key>
//
// is replaced with the string stored under <key> in the KV-v2 secret at
// <mount>/<path>.  The Vault client is only created when at least one value
// carries the prefix, so local development never needs VAULT_ADDR.

package config

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/askform/internal/vault"
)

const vaultPrefix = "vault:"

// secretRefs lists the fields that may hold a vault reference.
func secretRefs(c *Config) []*string {
	return []*string{&c.Form.CSRFKey}
}

func resolveSecrets(ctx context.Context, c *Config) error {
	var cli *vault.Client

	for _, ref := range secretRefs(c) {
		if !strings.HasPrefix(*ref, vaultPrefix) {
			continue
		}
		path, key, err := parseRef(*ref)
		if err != nil {
			return err
		}
		if cli == nil {
			cli, err = vault.New(ctx, zap.S().Infof)
			if err != nil {
				return fmt.Errorf("vault client: %w", err)
			}
		}
		val, err := cli.GetKV(ctx, path, key, 0)
		if err != nil {
			return err
		}
		*ref = val
	}
	return nil
}

// parseRef splits "vault:secret/askform#csrf_key" into path and key.
func parseRef(ref string) (path, key string, err error) {
	body := strings.TrimPrefix(ref, vaultPrefix)
	i := strings.LastIndexByte(body, '#')
	if i <= 0 || i == len(body)-1 {
		return "", "", fmt.Errorf("vault reference %q must look like vault:<path>#<key>", ref)
	}
	return body[:i], body[i+1:], nil
}
