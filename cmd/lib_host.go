package main

import (
	"context"

	"github.com/spf13/cobra"

	hostPkg "github.com/groundworklabs/groundwork/host"
)

var ssh string
var defaultSsh = ""

var docker string
var defaultDocker = ""

var sudo bool
var defaultSudo = false

func AddHostFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(
		&ssh, "host-ssh", "s", defaultSsh,
		"Provision given hostname using SSH in the format: [<user>[;fingerprint=<host-key fingerprint>]@]<host>[:<port>]",
	)

	cmd.Flags().StringVarP(
		&docker, "host-docker", "d", defaultDocker,
		"Provision given Docker container name in the format: [<name|uid>[:<group|gid>]@]<container>",
	)

	cmd.Flags().BoolVarP(
		&sudo, "host-sudo", "r", defaultSudo,
		"Use sudo to gain root privileges",
	)

	cmd.MarkFlagsMutuallyExclusive("host-ssh", "host-docker")
}

// GetHost builds the target host from flags; without host flags, the local
// host is provisioned.
func GetHost(ctx context.Context) (hostPkg.Host, error) {
	var hst hostPkg.Host
	var err error

	if ssh != "" {
		hst, err = hostPkg.NewSshAuthority(ctx, ssh)
		if err != nil {
			return nil, err
		}
	} else if docker != "" {
		hst, err = hostPkg.NewDocker(ctx, docker)
		if err != nil {
			return nil, err
		}
	} else {
		hst = hostPkg.Local{}
	}

	if sudo {
		hst, err = hostPkg.NewSudoWrapper(ctx, hst)
		if err != nil {
			return nil, err
		}
	}

	return hostPkg.NewLoggingWrapper(hst), nil
}

func init() {
	resetFlagsFns = append(resetFlagsFns, func() {
		ssh = defaultSsh
		docker = defaultDocker
		sudo = defaultSudo
	})
}
