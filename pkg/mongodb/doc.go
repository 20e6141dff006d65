// Package mongodb provides helpers for connecting to the MongoDB document
// store backing the notification collections.
//
// The package wraps the official mongo-driver with a retrying Connect and an
// env-taggable Config struct:
//
//	var cfg mongodb.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongodb.ConnectDatabase(ctx, cfg, "notifykit")
//	if err != nil {
//		// store unreachable
//	}
package mongodb
