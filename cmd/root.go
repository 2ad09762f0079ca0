// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix is prepended, with an underscore, to the environment variable
// form of every flag.
const envPrefix = "LOADTXT"

func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "loadtxt",
		Short: "loadtxt reads delimited text into typed arrays.",
		Long: `loadtxt reads delimited text into typed arrays.

Sources are local files, http(s) URLs or "-" for stdin; .gz and .zst
sources are decompressed on the fly. Each source is split into rows and
fields, projected to the requested columns, checked for missing values
and coerced to a single dtype. The result is printed as a table, csv,
json or written as a parquet file.

Every flag can also be given as an environment variable (LOADTXT_ plus
the flag name in capitals, with dashes and dots as underscores) or in
the TOML file named by --config. Flags win over the environment, which
wins over the file.
`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			err := setAllConfig(v, cmd.Flags())
			if err != nil {
				return err
			}

			// return "dry run" error if "dry-run" flag is set
			ret, err := cmd.Flags().GetBool("dry-run")
			if err != nil {
				return fmt.Errorf("problem getting dry-run flag: %v", err)
			}
			if ret {
				if cmd.Parent() != nil {
					return fmt.Errorf("dry run")
				}
			}

			return nil
		},
		SilenceUsage: true,
	}
	rc.PersistentFlags().Bool("dry-run", false, "stop before executing")
	_ = rc.PersistentFlags().MarkHidden("dry-run")
	rc.PersistentFlags().StringP("config", "c", "", "Configuration file to read from.")

	rc.AddCommand(newIngestCommand(stdin, stdout, stderr))
	rc.AddCommand(newConfigCommand(stdin, stdout, stderr))
	rc.AddCommand(newGenerateConfigCommand(stdin, stdout, stderr))

	rc.SetOutput(stderr)
	return rc
}

// setAllConfig takes a FlagSet to be the definition of all configuration
// options, as well as their defaults. It then reads from the command line, the
// environment, and a config file (if specified), and applies the configuration
// in that priority order. Since each flag in the set contains a pointer to
// where its value should be stored, setAllConfig can directly modify the value
// of each config variable.
//
// setAllConfig looks for environment variables which are capitalized versions
// of the flag names with dashes replaced by underscores, and prefixed with
// envPrefix plus an underscore.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet) error { // nolint: unparam
	// add cmd line flag def to viper
	err := v.BindPFlags(flags)
	if err != nil {
		return err
	}

	// add env to viper
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	c := v.GetString("config")
	var flagErr error
	validTags := make(map[string]bool)
	mapTags := make(map[string]bool)
	flags.VisitAll(func(f *pflag.Flag) {
		validTags[f.Name] = true
		if f.Value.Type() == "stringToString" {
			mapTags[f.Name] = true
		}
	})

	// add config file to viper
	if c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("toml")
		err := v.ReadInConfig()
		if err != nil {
			return fmt.Errorf("error reading configuration file '%s': %v", c, err)
		}

		for _, key := range v.AllKeys() {
			if validTags[key] {
				continue
			}
			// Tables such as [column-fill] are flattened to column-fill.N.
			if i := strings.LastIndex(key, "."); i > 0 && mapTags[key[:i]] {
				continue
			}
			return fmt.Errorf("invalid option in configuration file: %v", key)
		}
	}

	// set all values from viper
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil {
			return
		}
		var value string
		switch f.Value.Type() {
		case "stringSlice":
			// special handling is needed for stringSlice as v.GetString will
			// always return "" in the case that the value is an actual string
			// slice from a config file rather than a comma separated string
			// from a flag or env var.
			vss := v.GetStringSlice(f.Name)
			value = strings.Join(vss, ",")
		case "intSlice":
			value, flagErr = intSliceValue(f.Name, v.Get(f.Name))
		case "stringToString":
			value, flagErr = stringMapValue(f.Name, v.Get(f.Name))
		default:
			value = v.GetString(f.Name)
		}
		if flagErr != nil {
			return
		}

		if f.Changed {
			// If f.Changed is true, that means the value has already been set
			// by a flag, and we don't need to ask viper for it since the flag
			// is the highest priority. This works around a problem with string
			// slices where f.Value.Set(csvString) would cause the elements of
			// csvString to be appended to the existing value rather than
			// replacing it.
			return
		}
		// intSlice and stringToString reject an empty string.
		if value == "" && (f.Value.Type() == "intSlice" || f.Value.Type() == "stringToString") {
			return
		}
		flagErr = f.Value.Set(value)
	})
	return flagErr
}

// intSliceValue renders an int slice from a flag default, an environment
// variable or a config file as the comma separated form the flag parses.
func intSliceValue(name string, val interface{}) (string, error) {
	switch val := val.(type) {
	case nil:
		return "", nil
	case string:
		return strings.Trim(strings.TrimSpace(val), "[]"), nil
	}
	ints, err := cast.ToIntSliceE(val)
	if err != nil {
		return "", fmt.Errorf("invalid value for %s: %v", name, err)
	}
	strs := make([]string, len(ints))
	for i, n := range ints {
		strs[i] = strconv.Itoa(n)
	}
	return strings.Join(strs, ","), nil
}

// stringMapValue renders a string map from a flag default, an environment
// variable or a config file table as the key=value list the flag parses.
func stringMapValue(name string, val interface{}) (string, error) {
	switch val := val.(type) {
	case nil:
		return "", nil
	case string:
		return strings.Trim(strings.TrimSpace(val), "[]"), nil
	}
	m, err := cast.ToStringMapStringE(val)
	if err != nil {
		return "", fmt.Errorf("invalid value for %s: %v", name, err)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + m[k]
	}
	return strings.Join(pairs, ","), nil
}
