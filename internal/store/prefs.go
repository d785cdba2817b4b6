package store

const darkModeKey = "darkMode"

// Prefs reads and writes user preferences on a KV store. Currently that is
// just the theme flag, stored as the strings "true"/"false" under the
// darkMode key.
type Prefs struct {
	kv KV
}

// NewPrefs creates a Prefs view over kv.
func NewPrefs(kv KV) *Prefs {
	return &Prefs{kv: kv}
}

// DarkMode reports the persisted theme preference; a missing key means the
// light default.
func (p *Prefs) DarkMode() (bool, error) {
	value, found, err := p.kv.Get(darkModeKey)
	if err != nil {
		return false, err
	}
	return found && string(value) == "true", nil
}

func (p *Prefs) SetDarkMode(enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	return p.kv.Put(darkModeKey, []byte(value))
}
