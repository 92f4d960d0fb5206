package config

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to slide! Let's configure your workspace.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Where decks are published.
	apiPrompt := promptui.Prompt{
		Label:    "Storage service URL",
		Default:  cfg.APIURL,
		Validate: validateURL,
	}
	apiURL, err := apiPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("storage service url: %w", err)
	}
	cfg.APIURL = apiURL

	sharePrompt := promptui.Prompt{
		Label:    "Share URL for published decks",
		Default:  cfg.ShareURL,
		Validate: validateURL,
	}
	shareURL, err := sharePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("share url: %w", err)
	}
	cfg.ShareURL = shareURL

	// 2. Local data.
	dataPrompt := promptui.Prompt{
		Label:   "Directory for local decks",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	// 3. Background images.
	keyPrompt := promptui.Prompt{
		Label:   "Unsplash access key (leave blank to skip image lookup)",
		Default: "",
	}
	key, err := keyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("unsplash key: %w", err)
	}
	cfg.UnsplashKey = key

	// 4. Storage service backend.
	backendPrompt := promptui.Select{
		Label: "Storage backend for `slide server`",
		Items: []string{
			string(BackendSQLite),
			string(BackendFS),
			string(BackendMinio),
			string(BackendS3),
			string(BackendMemory),
		},
	}
	_, backend, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend selection: %w", err)
	}
	cfg.Server.Storage.Backend = Backend(backend)

	if cfg.Server.Storage.Backend == BackendMinio || cfg.Server.Storage.Backend == BackendS3 {
		bucketPrompt := promptui.Prompt{Label: "Bucket", Default: "slide-sets"}
		if cfg.Server.Storage.Bucket, err = bucketPrompt.Run(); err != nil {
			return nil, fmt.Errorf("bucket: %w", err)
		}
		endpointPrompt := promptui.Prompt{Label: "Endpoint (leave blank for AWS)", Default: ""}
		if cfg.Server.Storage.Endpoint, err = endpointPrompt.Run(); err != nil {
			return nil, fmt.Errorf("endpoint: %w", err)
		}
	}

	portPrompt := promptui.Prompt{
		Label:   "Storage service port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			if _, err := strconv.Atoi(s); err != nil {
				return fmt.Errorf("not a number")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validateURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("enter an absolute URL")
	}
	return nil
}
