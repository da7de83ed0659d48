// Package qrcode renders QR codes as PNG bytes or data URLs, used to hand
// otpauth:// provisioning URIs to authenticator apps.
//
//	img, err := qrcode.DataURL(uri, qrcode.WithSize(256))
package qrcode
