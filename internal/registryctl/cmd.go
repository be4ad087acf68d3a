package registryctl

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	v1 "diskregistry/api/v1"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const tokenEnv = "DISKREGISTRY_TOKEN"

type options struct {
	server string
	token  string
	output string
	client *Client
}

// NewRootCmd 构建 registryctl 命令树
func NewRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "registryctl",
		Short:         "Operate a diskregistry control plane",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if o.token == "" {
				o.token = os.Getenv(tokenEnv)
			}
			switch o.output {
			case "json", "yaml":
			default:
				return fmt.Errorf("unsupported output format %q", o.output)
			}
			c, err := NewClient(o.server, o.token)
			if err != nil {
				return fmt.Errorf("invalid server url: %w", err)
			}
			o.client = c
			return nil
		},
	}
	root.PersistentFlags().StringVar(&o.server, "server", "http://127.0.0.1:8000", "diskregistry API server URL")
	root.PersistentFlags().StringVar(&o.token, "token", "", "access token (default $"+tokenEnv+")")
	root.PersistentFlags().StringVarP(&o.output, "output", "o", "yaml", "output format: json, yaml")

	root.AddCommand(
		newLoginCmd(o),
		newAgentCmd(o),
		newDeviceCmd(o),
		newDiskCmd(o),
		newCmsCmd(o),
		newPlacementGroupCmd(o),
		newRegistryCmd(o),
	)
	return root
}

func (o *options) print(w io.Writer, v interface{}) error {
	if o.output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toPlain(v)); err != nil {
		return err
	}
	return enc.Close()
}

// toPlain 经 JSON 转成通用结构，yaml 输出沿用 API 的 json 字段名
func toPlain(v interface{}) interface{} {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

func newLoginCmd(o *options) *cobra.Command {
	var account, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain an access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := o.client.Login(cmd.Context(), account, password)
			if err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&account, "account", "admin", "admin account")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAgentCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Inspect and manage storage agents",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := o.client.ListAgents(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list agents: %w", err)
			}
			return o.print(cmd.OutOrStdout(), data.List)
		},
	}

	get := &cobra.Command{
		Use:   "get <agent-id>",
		Short: "Show an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := o.client.GetAgent(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get agent: %w", err)
			}
			return o.print(cmd.OutOrStdout(), agent)
		},
	}

	var message string
	state := &cobra.Command{
		Use:       "state <agent-id> <online|warning|unavailable>",
		Short:     "Change the state of an agent",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"online", "warning", "unavailable"},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := o.client.ChangeAgentState(cmd.Context(), args[0], v1.ChangeAgentStateRequest{State: args[1], Message: message})
			if err != nil {
				return fmt.Errorf("failed to change agent state: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "agent %q is now %s\n", args[0], args[1])
			return nil
		},
	}
	state.Flags().StringVarP(&message, "message", "m", "", "reason for the state change")

	cmd.AddCommand(list, get, state)
	return cmd
}

func newDeviceCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Inspect and manage devices",
	}

	var agentId, poolName, state, diskId string
	var dirty, suspended bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := url.Values{}
			for k, v := range map[string]string{"agent_id": agentId, "pool_name": poolName, "state": state, "disk_id": diskId} {
				if v != "" {
					filter.Set(k, v)
				}
			}
			if cmd.Flags().Changed("dirty") {
				filter.Set("dirty", strconv.FormatBool(dirty))
			}
			if cmd.Flags().Changed("suspended") {
				filter.Set("suspended", strconv.FormatBool(suspended))
			}
			data, err := o.client.ListDevices(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list devices: %w", err)
			}
			return o.print(cmd.OutOrStdout(), data.List)
		},
	}
	list.Flags().StringVar(&agentId, "agent", "", "filter by agent id")
	list.Flags().StringVar(&poolName, "pool", "", "filter by pool name")
	list.Flags().StringVar(&state, "state", "", "filter by state")
	list.Flags().StringVar(&diskId, "disk", "", "filter by disk id")
	list.Flags().BoolVar(&dirty, "dirty", false, "only devices waiting for secure erase")
	list.Flags().BoolVar(&suspended, "suspended", false, "only suspended devices")

	get := &cobra.Command{
		Use:   "get <device-id>",
		Short: "Show a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := o.client.GetDevice(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get device: %w", err)
			}
			return o.print(cmd.OutOrStdout(), dev)
		},
	}

	var message string
	setState := &cobra.Command{
		Use:       "state <device-id> <online|warning|error>",
		Short:     "Change the state of a device",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"online", "warning", "error"},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := o.client.ChangeDeviceState(cmd.Context(), args[0], v1.ChangeDeviceStateRequest{State: args[1], Message: message})
			if err != nil {
				return fmt.Errorf("failed to change device state: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "device %q is now %s\n", args[0], args[1])
			return nil
		},
	}
	setState.Flags().StringVarP(&message, "message", "m", "", "reason for the state change")

	suspend := &cobra.Command{
		Use:   "suspend <device-id>",
		Short: "Exclude a device from allocation and secure erase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.client.SuspendDevice(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to suspend device: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "device %q suspended\n", args[0])
			return nil
		},
	}
	resume := &cobra.Command{
		Use:   "resume <device-id>",
		Short: "Return a suspended device to the pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.client.ResumeDevice(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to resume device: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "device %q resumed\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, get, setState, suspend, resume)
	return cmd
}

func newDiskCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disk",
		Short: "Allocate and manage disks",
	}

	var req v1.AllocateDiskRequest
	allocate := &cobra.Command{
		Use:   "allocate <disk-id>",
		Short: "Allocate a disk or resize an existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.DiskId = args[0]
			disk, err := o.client.AllocateDisk(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("failed to allocate disk: %w", err)
			}
			return o.print(cmd.OutOrStdout(), disk)
		},
	}
	allocate.Flags().Uint64Var(&req.BlocksCount, "blocks", 0, "number of blocks")
	allocate.Flags().Uint32Var(&req.BlockSize, "block-size", 4096, "block size in bytes")
	allocate.Flags().StringVar(&req.MediaKind, "media", "ssd_nonreplicated", "media kind")
	allocate.Flags().StringVar(&req.PlacementGroupId, "placement-group", "", "placement group id")
	allocate.Flags().Uint32Var(&req.ReplicaCount, "replicas", 0, "replica count for mirrored media")
	allocate.Flags().StringVar(&req.CloudId, "cloud", "", "cloud id")
	allocate.Flags().StringVar(&req.FolderId, "folder", "", "folder id")
	allocate.Flags().StringSliceVar(&req.PreferredRacks, "prefer-rack", nil, "racks to take devices from first")
	_ = allocate.MarkFlagRequired("blocks")

	describe := &cobra.Command{
		Use:   "describe <disk-id>",
		Short: "Show a disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := o.client.DescribeDisk(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to describe disk: %w", err)
			}
			return o.print(cmd.OutOrStdout(), disk)
		},
	}

	cleanup := &cobra.Command{
		Use:   "cleanup <disk-id>",
		Short: "Mark a disk for cleanup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.client.MarkDiskForCleanup(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to mark disk for cleanup: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "disk %q marked for cleanup\n", args[0])
			return nil
		},
	}

	var force bool
	deallocate := &cobra.Command{
		Use:   "deallocate <disk-id>",
		Short: "Release a disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.client.DeallocateDisk(cmd.Context(), args[0], force); err != nil {
				return fmt.Errorf("failed to deallocate disk: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "disk %q deallocated\n", args[0])
			return nil
		},
	}
	deallocate.Flags().BoolVar(&force, "force", false, "skip the cleanup mark check")

	replace := &cobra.Command{
		Use:   "replace <disk-id> <device-id>",
		Short: "Replace a device of a disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := o.client.ReplaceDevice(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to replace device: %w", err)
			}
			return o.print(cmd.OutOrStdout(), disk)
		},
	}

	finish := &cobra.Command{
		Use:   "finish-migration <disk-id> <source-device-id> <target-device-id>",
		Short: "Complete a device migration",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := o.client.FinishMigration(cmd.Context(), args[0], v1.FinishMigrationRequest{SourceDeviceId: args[1], TargetDeviceId: args[2]})
			if err != nil {
				return fmt.Errorf("failed to finish migration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migration %s -> %s finished\n", args[1], args[2])
			return nil
		},
	}

	notify := &cobra.Command{
		Use:   "pending-notifications",
		Short: "List disks with undelivered state notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := o.client.ListDisksToNotify(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list notifications: %w", err)
			}
			return o.print(cmd.OutOrStdout(), data.DiskIds)
		},
	}

	cmd.AddCommand(allocate, describe, cleanup, deallocate, replace, finish, notify)
	return cmd
}

func newCmsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cms <remove_host|add_host|remove_device|add_device> <host> [device]",
		Short: "Run a maintenance action against a host or device",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := v1.CmsAction{Type: strings.ReplaceAll(args[0], "-", "_"), Host: args[1]}
			if len(args) == 3 {
				action.Device = args[2]
			}
			data, err := o.client.ExecuteCmsActions(cmd.Context(), v1.CmsActionRequest{Actions: []v1.CmsAction{action}})
			if err != nil {
				return fmt.Errorf("failed to execute cms action: %w", err)
			}
			return o.print(cmd.OutOrStdout(), data.Results)
		},
	}
	return cmd
}

func newPlacementGroupCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "placement-group",
		Aliases: []string{"pg"},
		Short:   "Manage placement groups",
	}

	create := &cobra.Command{
		Use:   "create <group-id>",
		Short: "Create a placement group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.client.CreatePlacementGroup(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to create placement group: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "placement group %q created\n", args[0])
			return nil
		},
	}

	destroy := &cobra.Command{
		Use:   "destroy <group-id>",
		Short: "Destroy a placement group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.client.DestroyPlacementGroup(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to destroy placement group: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "placement group %q destroyed\n", args[0])
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List placement groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := o.client.ListPlacementGroups(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list placement groups: %w", err)
			}
			return o.print(cmd.OutOrStdout(), data.List)
		},
	}

	cmd.AddCommand(create, destroy, list)
	return cmd
}

func newRegistryCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Registry-wide operations",
	}

	writable := &cobra.Command{
		Use:   "writable <true|false>",
		Short: "Switch the registry between read-write and read-only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := strconv.ParseBool(args[0])
			if err != nil {
				return fmt.Errorf("invalid writable value %q: %w", args[0], err)
			}
			if err := o.client.SetWritableState(cmd.Context(), w); err != nil {
				return fmt.Errorf("failed to set writable state: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registry writable=%t\n", w)
			return nil
		},
	}

	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove disks marked for cleanup that no volume references",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := o.client.CleanupDisks(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to cleanup disks: %w", err)
			}
			return o.print(cmd.OutOrStdout(), data)
		},
	}

	cmd.AddCommand(writable, cleanup)
	return cmd
}
