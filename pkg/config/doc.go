// Package config provides configuration loading, validation, and live
// reload for Minos.
//
// Configuration is read from a YAML file, filled in with defaults,
// optionally overridden by MINOS_* environment variables, and then
// validated as a whole. Validation collects every problem instead of
// stopping at the first one, so a broken file is fixed in one pass.
//
// Typical usage:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("minos.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// A Watcher can re-run the load on file changes:
//
//	w, _ := config.NewWatcher("minos.yaml", logger)
//	go w.Watch(ctx, func() error {
//		_, err := config.LoadConfigWithEnvOverrides("minos.yaml")
//		return err
//	})
package config
