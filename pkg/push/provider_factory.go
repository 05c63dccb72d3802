package push

import (
	"fmt"

	"conquest-backend/pkg/env"
	"conquest-backend/pkg/logger"
)

// NewProvider builds the provider named by PUSH_PROVIDER. The default is the
// mock provider so local game servers run without FCM or APNs credentials;
// an unknown name is a configuration error, not a silent fallback.
func NewProvider() (Provider, error) {
	switch name := env.GetString("PUSH_PROVIDER", "mock"); name {
	case "fcm":
		return fcmFromEnv()
	case "apns":
		return apnsFromEnv()
	case "mock", "":
		logger.Info("Using mock push notification provider")
		return &MockProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown push provider %q", name)
	}
}

func fcmFromEnv() (Provider, error) {
	projectID := env.GetString("FCM_PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("FCM_PROJECT_ID is required when PUSH_PROVIDER=fcm")
	}

	return NewFCMProvider(&FCMConfig{
		ProjectID:       projectID,
		CredentialsPath: env.GetString("FCM_CREDENTIALS_PATH", ""),
	})
}

func apnsFromEnv() (Provider, error) {
	cfg := &APNsConfig{
		BundleID:            env.GetString("APNS_BUNDLE_ID", ""),
		KeyPath:             env.GetString("APNS_KEY_PATH", ""),
		KeyID:               env.GetString("APNS_KEY_ID", ""),
		TeamID:              env.GetString("APNS_TEAM_ID", ""),
		CertificatePath:     env.GetString("APNS_CERT_PATH", ""),
		CertificatePassword: env.GetStringFromFile("APNS_CERT_PASSWORD", ""),
		Production:          env.GetBool("APNS_PRODUCTION", false),
	}

	if cfg.BundleID == "" {
		return nil, fmt.Errorf("APNS_BUNDLE_ID is required when PUSH_PROVIDER=apns")
	}
	if cfg.KeyPath == "" && cfg.CertificatePath == "" {
		return nil, fmt.Errorf("APNs needs token auth (APNS_KEY_PATH, APNS_KEY_ID, APNS_TEAM_ID) or a certificate (APNS_CERT_PATH)")
	}

	return NewAPNsProvider(cfg)
}
