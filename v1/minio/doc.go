// Package minio loads the YAML settings document from S3-compatible object
// storage. The document has the layout configuration.FileProvider reads from
// disk: named sections of key/value pairs plus connectionStrings.
//
//	loader, err := minio.NewSettingsLoader(minio.Config{
//	    Endpoint:  "minio:9000",
//	    Bucket:    "config",
//	    ObjectKey: "orders/settings.yaml",
//	})
//	document, err := loader.Load(ctx)
//	provider, err := configuration.NewChainProvider(document, local)
package minio
