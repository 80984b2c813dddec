package core

import (
	"github.com/JonMunkholm/coverdesk/internal/apiclient"
	"github.com/JonMunkholm/coverdesk/internal/config"
)

// ClientConfig maps the API settings onto an apiclient.Config.
func ClientConfig(cfg *config.Config) apiclient.Config {
	return apiclient.Config{
		BaseURL:        cfg.API.BaseURL,
		APIPrefix:      cfg.API.Prefix,
		CSRFCookie:     cfg.API.CSRFCookie,
		CSRFHeader:     cfg.API.CSRFHeader,
		CSRFEndpoint:   cfg.API.CSRFEndpoint,
		LoginEndpoint:  cfg.API.LoginEndpoint,
		LogoutEndpoint: cfg.API.LogoutEndpoint,
		Timeout:        cfg.API.Timeout,
	}
}
