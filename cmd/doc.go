// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

/*
Package cmd contains the loadtxt subcommand definitions (1 per file).

Each command file has a new*Command function and a global exported instance
of the ctl command it runs. Flags are bound directly to the fields of that
instance, and setAllConfig fills in whatever the command line left unset
from LOADTXT_ environment variables and the --config TOML file.
*/
package cmd
