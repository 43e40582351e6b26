// Package config provides centralized configuration management for the
// destaques service and CLI.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A .env file in the working directory
//	3. A YAML file (DESTAQUES_CONFIG, config.yaml or configs/config.yaml)
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern DESTAQUES_<SECTION>_<FIELD>:
//
//	DESTAQUES_SERVER_PORT=8080
//	DESTAQUES_SELECTION_TOP_N=5
//	DESTAQUES_SELECTION_RATING_FLOOR=A-
//	DESTAQUES_MESSAGING_INSTANCE_ID=...
//	DESTAQUES_MESSAGING_GROUPS=clientes:120363000000000000-group,vip:1203630001-group
//
// # Validation
//
// Load validates ranges (top_n between 1 and 20, delay_message between 0
// and 15) and the timezone name. Messaging credentials are optional;
// MessagingConfig.Configured reports whether sending is possible.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	today := cfg.Today(time.Now())
package config
