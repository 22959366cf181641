package ui

import "os"

// nfEnabled reports whether Nerd Font icons should be rendered.
// Default to enabled; NERDFONT=0 disables them.
func nfEnabled() bool {
	return os.Getenv("NERDFONT") != "0"
}

func nf(icon, fallback string) string {
	if nfEnabled() {
		return icon
	}
	return fallback
}

func IconPreset() string   { return nf("\uf135", "*") } // fa-rocket
func IconProcess() string  { return nf("\uf085", ">") } // fa-cogs
func IconOrphan() string   { return nf("\uf127", "?") } // fa-chain-broken
func IconTerminal() string { return nf("\uf120", "$") }
func IconClock() string    { return nf("\uf017", "") }
func IconFilter() string   { return nf("\uf0b0", "/") } // fa-filter
func IconWarn() string     { return nf("\uf071", "!") } // fa-warning
