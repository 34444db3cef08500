package config

// GameConfig locates the installed game data
type GameConfig struct {
	// Directory holding the .esm/.esp/.esl files
	PluginsDir string `mapstructure:"plugins_dir"`

	// plugins.txt listing the active plugins in load order
	LoadOrderPath string `mapstructure:"load_order_path"`

	// Directory with loose string tables, defaults to <plugins_dir>/Strings
	StringsDir string `mapstructure:"strings_dir"`

	// Language suffix of the string table files
	Language string `mapstructure:"language" validate:"required"`

	// Plugins the game loads before anything listed in plugins.txt
	ImplicitPlugins []string `mapstructure:"implicit_plugins" validate:"dive,plugin_name"`
}
