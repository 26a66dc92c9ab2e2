// Command linkgen generates and validates controllerctl/workerctl config
// templates.
package main

import (
	"flag"
	"log"

	"github.com/danmuck/relaylink/internal/config"
)

func main() {
	role := flag.String("role", "controller", "config role: controller|worker")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file instead of generating one")
	input := flag.String("input", "", "config path for validation")
	force := flag.Bool("force", false, "overwrite an existing config file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			log.Fatalf("linkgen: -input is required with -validate")
		}
		if _, err := config.Load(path); err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated %s config at %s", *role, path)
		return
	}

	target := *output
	if target == "" {
		switch *role {
		case config.RoleController:
			target = "cmd/controllerctl/config.toml"
		case config.RoleWorker:
			target = "cmd/workerctl/config.toml"
		default:
			log.Fatalf("linkgen: unknown role %q", *role)
		}
	}

	if err := config.WriteTemplate(target, *role, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *role, target)
}
