// Package config loads and validates the Gray Logic Connect configuration.
//
// Load reads a YAML file, fills in defaults for anything unset, applies
// GLCONNECT_* environment overrides and validates the result. It runs once
// at startup; the returned Config is treated as immutable afterwards.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Broker.Host)
//
// Secrets such as the broker password and the InfluxDB token are better
// supplied through their environment variables than written into the file.
// When they do live in the file, keep its permissions at 0600.
package config
