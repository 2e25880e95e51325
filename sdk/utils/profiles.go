// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/scc-digitalhub/ftp-cli-sdk/sdk/config"
)

// Profile holds all logical connection keys. Tags:
// - vkey: Viper key
// - env: canonical env name (UPPER_SNAKE). If empty, derived from vkey
// - persist: "true" to write the key into the INI
// - default: optional default to set if key is unset
// - secret: "true" if sensitive (not used here, but handy for logging)
type Profile struct {
	Host               string `vkey:"ftp_host"                 env:"FTP_HOST"                 persist:"true"`
	Port               string `vkey:"ftp_port"                 env:"FTP_PORT"                 persist:"true"`
	User               string `vkey:"ftp_user"                 env:"FTP_USER"                 persist:"true"`
	Password           string `vkey:"ftp_password"             env:"FTP_PASSWORD"             persist:"true"  secret:"true"`
	Protocol           string `vkey:"ftp_protocol"             env:"FTP_PROTOCOL"             persist:"true"  default:"ftp"`
	Timeout            string `vkey:"ftp_timeout"              env:"FTP_TIMEOUT"              persist:"true"`
	Proxy              string `vkey:"ftp_proxy"                env:"FTP_PROXY"                persist:"true"`
	ActiveMode         string `vkey:"ftp_active_mode"          env:"FTP_ACTIVE_MODE"          persist:"true"`
	TLSCert            string `vkey:"ftp_tls_cert"             env:"FTP_TLS_CERT"             persist:"true"`
	TLSKey             string `vkey:"ftp_tls_key"              env:"FTP_TLS_KEY"              persist:"true"`
	TLSKeyPassword     string `vkey:"ftp_tls_key_password"     env:"FTP_TLS_KEY_PASSWORD"     persist:"true"  secret:"true"`
	InsecureSkipVerify string `vkey:"ftp_insecure_skip_verify" env:"FTP_INSECURE_SKIP_VERIFY" persist:"true"`

	AwsAccessKeyID     string `vkey:"aws_access_key_id"     env:"AWS_ACCESS_KEY_ID"     persist:"true" secret:"true"`
	AwsSecretAccessKey string `vkey:"aws_secret_access_key" env:"AWS_SECRET_ACCESS_KEY" persist:"true" secret:"true"`
	AwsSessionToken    string `vkey:"aws_session_token"     env:"AWS_SESSION_TOKEN"     persist:"true" secret:"true"`
	AwsRegion          string `vkey:"aws_region"            env:"AWS_REGION"            persist:"true"`
	AwsEndpointURL     string `vkey:"aws_endpoint_url"      env:"AWS_ENDPOINT_URL"      persist:"true"`
	S3Bucket           string `vkey:"s3_bucket"             env:"S3_BUCKET"             persist:"true"`
}

// DefaultIniPath returns the profile store location in the user home.
func DefaultIniPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return home + string(os.PathSeparator) + IniName
}

// BindEnvFromStruct binds env for all fields of Profile using struct tags.
func BindEnvFromStruct() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	rt := reflect.TypeOf(Profile{})
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)

		key := f.Tag.Get("vkey")
		if key == "" {
			continue
		}

		env := f.Tag.Get("env")
		if env == "" {
			env = strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
		_ = viper.BindEnv(key, env)

		if def := f.Tag.Get("default"); def != "" && !viper.IsSet(key) {
			viper.SetDefault(key, def)
		}
	}
}

// WriteIniFromStruct writes a new INI holding only fields marked
// persist:"true", under the named profile section.
func WriteIniFromStruct(iniPath, profileName string) error {
	cfg := ini.Empty()
	cfg.Section("DEFAULT").Key(CurrentProfile).SetValue(profileName)
	sec := cfg.Section(profileName)

	rt := reflect.TypeOf(Profile{})
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.Tag.Get("persist") != "true" {
			continue
		}
		key := f.Tag.Get("vkey")
		if key == "" {
			continue
		}
		val := viper.GetString(key)
		if val == "" {
			continue
		}
		sec.Key(key).SetValue(val)
	}

	return cfg.SaveTo(iniPath)
}

// UpdateIniFromStruct updates or creates the profile section from current
// Viper values (persist:"true" only).
func UpdateIniFromStruct(iniPath, profileName string) error {
	cfg, err := ini.Load(iniPath)
	if err != nil {
		return WriteIniFromStruct(iniPath, profileName)
	}
	sec := cfg.Section(profileName)

	rt := reflect.TypeOf(Profile{})
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.Tag.Get("persist") != "true" {
			continue
		}
		key := f.Tag.Get("vkey")
		if key == "" {
			continue
		}
		val := viper.GetString(key)
		if val == "" {
			continue
		}
		sec.Key(key).SetValue(val)
	}

	if !cfg.Section("DEFAULT").HasKey(CurrentProfile) {
		cfg.Section("DEFAULT").Key(CurrentProfile).SetValue(profileName)
	}
	return cfg.SaveTo(iniPath)
}

// LoadProfile loads [DEFAULT] + [profile] from the INI into Viper (TOML
// in-memory). ENV can still override on Get().
func LoadProfile(iniPath, profileName string) error {
	BindEnvFromStruct()

	cfg, err := ini.Load(iniPath)
	if err != nil {
		// ENV-only mode
		viper.Set(CurrentProfile, profileName)
		return nil
	}

	if profileName == "" || strings.EqualFold(profileName, "default") {
		if v := cfg.Section("DEFAULT").Key(CurrentProfile).String(); v != "" {
			profileName = v
		}
	}

	def := cfg.Section("DEFAULT")
	selected := def
	if profileName != "" && cfg.HasSection(profileName) {
		selected = cfg.Section(profileName)
	}

	merged := make(map[string]string)
	for _, k := range def.Keys() {
		merged[k.Name()] = k.Value()
	}
	if selected != def {
		for _, k := range selected.Keys() {
			merged[k.Name()] = k.Value()
		}
	}

	var buf bytes.Buffer
	for k, v := range merged {
		vSafe := strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), `"`, `\"`)
		_, _ = fmt.Fprintf(&buf, "%s = \"%s\"\n", k, vSafe)
	}
	viper.SetConfigType("toml")
	if err := viper.ReadConfig(&buf); err != nil {
		return fmt.Errorf("failed to load INI into viper: %w", err)
	}
	viper.Set(CurrentProfile, profileName)
	return nil
}

// SessionConfigFromViper materializes the SDK configuration from the
// currently loaded profile and environment.
func SessionConfigFromViper() (config.Config, error) {
	proto, err := config.ParseProtocol(viper.GetString(FtpProtocol))
	if err != nil {
		return config.Config{}, err
	}

	var timeout time.Duration
	if raw := viper.GetString(FtpTimeout); raw != "" {
		timeout, err = time.ParseDuration(raw)
		if err != nil {
			return config.Config{}, fmt.Errorf("invalid %s: %w", FtpTimeout, err)
		}
	}

	return config.Config{
		Session: config.SessionConfig{
			Host:               viper.GetString(FtpHost),
			Port:               uint16(viper.GetUint32(FtpPort)),
			Username:           viper.GetString(FtpUser),
			Password:           viper.GetString(FtpPassword),
			Protocol:           proto,
			Timeout:            timeout,
			Proxy:              viper.GetString(FtpProxy),
			ActiveMode:         viper.GetBool(FtpActiveMode),
			TLSCertFile:        viper.GetString(FtpTLSCert),
			TLSKeyFile:         viper.GetString(FtpTLSKey),
			TLSKeyPass:         viper.GetString(FtpTLSKeyPassword),
			InsecureSkipVerify: viper.GetBool(FtpInsecureSkipVerify),
		},
		S3: config.S3Config{
			AccessKey:   viper.GetString(AwsAccessKeyID),
			SecretKey:   viper.GetString(AwsSecretAccessKey),
			AccessToken: viper.GetString(AwsSessionToken),
			Region:      viper.GetString(AwsRegion),
			EndpointURL: viper.GetString(AwsEndpointURL),
			Bucket:      viper.GetString(S3Bucket),
		},
	}, nil
}
