// Package home is the default plugin, served when no plugin is requested.
package home

import (
	"context"

	"github.com/markc/pablo"
)

// ID is the registry id of the plugin.
const ID = pablo.DefaultPlugin

// Greeting is the markup returned by the plugin.
const Greeting = "<h1>Welcome to the Pablo Micro Framework</h1><p>This is the default home plugin.</p>"

// New is the pablo.PluginFactory of the home plugin.
func New(*pablo.RequestContext, pablo.Theme) (pablo.Plugin, error) {
	return pablo.PluginFunc(func(context.Context) (any, error) {
		return Greeting, nil
	}), nil
}
