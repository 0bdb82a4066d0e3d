package app

import "errors"

// ErrNoToken indicates that no token was given and the settings file has none.
var ErrNoToken = errors.New("bot token is not set; add Token to the settings file")

// ErrNotInitialized indicates that Init was called before InitDatabase.
var ErrNotInitialized = errors.New("databases are not initialized")
