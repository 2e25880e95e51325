// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

const (
	IniName        = ".ftpsdk.ini"
	CurrentProfile = "current_profile"

	FtpHost               = "ftp_host"
	FtpPort               = "ftp_port"
	FtpUser               = "ftp_user"
	FtpPassword           = "ftp_password"
	FtpProtocol           = "ftp_protocol"
	FtpTimeout            = "ftp_timeout"
	FtpProxy              = "ftp_proxy"
	FtpActiveMode         = "ftp_active_mode"
	FtpTLSCert            = "ftp_tls_cert"
	FtpTLSKey             = "ftp_tls_key"
	FtpTLSKeyPassword     = "ftp_tls_key_password"
	FtpInsecureSkipVerify = "ftp_insecure_skip_verify"

	AwsAccessKeyID     = "aws_access_key_id"
	AwsSecretAccessKey = "aws_secret_access_key"
	AwsSessionToken    = "aws_session_token"
	AwsRegion          = "aws_region"
	AwsEndpointURL     = "aws_endpoint_url"
	S3Bucket           = "s3_bucket"
)
