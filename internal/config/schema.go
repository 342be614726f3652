package config

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// schemaSource constrains a merged configuration.
const schemaSource = `
#Config: {
	env:     "development" | "production"
	addr:    string & != ""
	storage: "database" | "session"
	database: {
		url:  string
		name: string & != ""
	}
	session: {
		cookie_name: =~"^[A-Za-z0-9_-]+$"
		secret_key:  =~"^.{16,}$"
	}

	if env == "production" {
		database: url: != ""
	}
}
`

// Validate checks cfg against the configuration schema.
func Validate(cfg Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := schema.Unify(ctx.Encode(asMap(cfg)))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %s", errors.Details(err, nil))
	}
	return nil
}

// asMap mirrors the YAML field names so schema errors name the keys a user
// would write.
func asMap(cfg Config) map[string]any {
	return map[string]any{
		"env":     cfg.Env,
		"addr":    cfg.Addr,
		"storage": cfg.Storage,
		"database": map[string]any{
			"url":  cfg.Database.URL,
			"name": cfg.Database.Name,
		},
		"session": map[string]any{
			"cookie_name": cfg.Session.CookieName,
			"secret_key":  cfg.Session.SecretKey,
		},
	}
}
