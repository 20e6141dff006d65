// Package logger builds configured *slog.Logger instances and provides typed
// attribute helpers so log keys stay consistent across the library.
//
// Components accept a *slog.Logger through functional options and fall back to
// slog.Default(), so applications keep full control over log routing.
//
// Basic usage:
//
//	log := logger.New(
//		logger.WithFormat(logger.FormatText),
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithAttr(logger.Component("notifications")),
//	)
//	log.Info("subscription opened", logger.UserID(userID))
package logger
