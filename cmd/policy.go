package cmd

import (
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/SergeiSkv/NullGuard/jsr305"
)

const jsr305Key = "jsr305"

// settings layers --jsr305 and NULLGUARD_JSR305 over the config file.
var settings = newSettings()

func newSettings() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("NULLGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func bindPolicyFlag(v *viper.Viper, flags *pflag.FlagSet) {
	_ = v.BindPFlag(jsr305Key, flags.Lookup(jsr305Key))
}

// policyTokens returns the tokens from the flag or the environment when set,
// else the tokens from the config file.
func policyTokens(v *viper.Viper, config *Config) []string {
	if v.IsSet(jsr305Key) {
		return splitTokens(v.GetStringSlice(jsr305Key))
	}
	if config == nil {
		return nil
	}
	return config.JSR305
}

// splitTokens accepts "strict,@a.B:warn" and "strict @a.B:warn" alike.
func splitTokens(values []string) []string {
	tokens := make([]string, 0, len(values))
	for _, value := range values {
		for _, field := range strings.FieldsFunc(value, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		}) {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

// buildPolicy folds the tokens and warns about every token the policy skips.
func buildPolicy(tokens []string) *jsr305.Policy {
	for _, err := range jsr305.InvalidTokens(tokens) {
		slog.Warn("Ignoring JSR-305 token", "error", err)
	}
	policy := jsr305.FromArgs(tokens)
	slog.Debug("JSR-305 policy", "describe", policy.String(), "disabled", policy.IsDisabled())
	return policy
}
