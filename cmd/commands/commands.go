package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/modguard/modguard/config"
	dr "github.com/modguard/modguard/data/redis"
	"github.com/modguard/modguard/logging/logger"
	"github.com/modguard/modguard/logging/observes"
	"github.com/modguard/modguard/security/manager"
	"github.com/modguard/modguard/security/types"
	"github.com/modguard/modguard/validation/validator"
	"github.com/modguard/modguard/version"
)

// checkParams are the flag inputs for one access decision.
type checkParams struct {
	ModuleID  string `json:"module" validate:"required"`
	Priority  string `json:"priority" validate:"required,oneof=critical high medium low"`
	Resource  string `json:"resource" validate:"required"`
	Operation string `json:"operation" validate:"required"`
}

// NewCheckCommand creates the check command. It builds a security context
// from flags, runs one access decision against the policy pipeline and
// prints the result, audit trail and statistics as JSON.
func NewCheckCommand() *cobra.Command {
	var (
		configFile  string
		moduleID    string
		priority    string
		permissions []string
		userID      string
		resource    string
		resourceID  string
		permission  string
		operation   string
		track       bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one access decision and print the outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := checkParams{
				ModuleID:  moduleID,
				Priority:  priority,
				Resource:  resource,
				Operation: operation,
			}
			if errs := validator.ValidateStruct(&params); len(errs) > 0 {
				return fmt.Errorf("invalid arguments: %v", errs)
			}

			m, cleanup, err := buildManager(configFile)
			if err != nil {
				return err
			}
			defer cleanup()
			defer m.Stop()

			rt, err := types.ParseResourceType(resource)
			if err != nil {
				return err
			}

			sc, err := m.CreateSecurityContext(moduleID, types.Priority(priority), permissions, userID)
			if err != nil {
				return fmt.Errorf("failed to create security context: %v", err)
			}

			req := &types.AccessRequest{
				Context:      sc,
				ResourceType: rt,
				ResourceID:   resourceID,
				Permission:   types.PermissionLevel(permission),
				Operation:    operation,
			}

			var report *types.OperationReport
			result := m.CheckAccess(context.Background(), req)
			if result.Allowed && track {
				opID := uuid.NewString()
				m.StartOperation(opID, sc)
				m.TrackResourceUsage(opID, rt, 1)
				report = m.EndOperation(opID)
			}

			out := map[string]any{
				"result":     result,
				"audit_log":  m.GetAuditLog(nil),
				"statistics": m.GetStatistics(),
			}
			if report != nil {
				out["operation_report"] = report
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&moduleID, "module", "m", "", "module identifier")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(types.PriorityMedium), "module trust tier (critical, high, medium, low)")
	cmd.Flags().StringSliceVar(&permissions, "permissions", nil, "permission strings, e.g. database:read")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "acting user identifier")
	cmd.Flags().StringVarP(&resource, "resource", "r", "", "resource type")
	cmd.Flags().StringVar(&resourceID, "resource-id", "", "resource identifier")
	cmd.Flags().StringVar(&permission, "permission", string(types.PermissionRead), "requested permission level")
	cmd.Flags().StringVarP(&operation, "operation", "o", "check", "operation name")
	cmd.Flags().BoolVar(&track, "track", false, "wrap the decision in a tracked operation")
	_ = cmd.MarkFlagRequired("module")
	_ = cmd.MarkFlagRequired("resource")

	return cmd
}

// NewPoliciesCommand lists the policies a freshly constructed manager
// registers, in evaluation order.
func NewPoliciesCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "policies",
		Short: "List registered policies in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, cleanup, err := buildManager(configFile)
			if err != nil {
				return err
			}
			defer cleanup()
			defer m.Stop()

			stats := m.GetStatistics()
			fmt.Printf("Registered policies: %d\n", stats.PoliciesCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	return cmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.GetVersionInfo()
			fmt.Println("Version:", info.Version)
			fmt.Println("Built At:", info.BuiltAt)
		},
	}
}

func buildManager(configFile string) (*manager.Manager, func(), error) {
	if configFile == "" {
		m, err := manager.New(nil)
		return m, func() {}, err
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %v", err)
	}

	logger.SetVersion(version.Version)
	cleanup, err := logger.Init(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %v", err)
	}

	if cfg.Observes != nil {
		if s := cfg.Observes.Sentry; s != nil && s.Endpoint != "" {
			if err := observes.NewSentry(&observes.SentryOptions{
				Dsn:         s.Endpoint,
				Name:        cfg.AppName,
				Release:     s.Release,
				Environment: s.Environment,
			}); err != nil {
				logger.Warnf(nil, "sentry initialization failed: %v", err)
			}
		}
		if tr := cfg.Observes.Tracer; tr != nil && tr.Endpoint != "" {
			if err := observes.NewTracer(&observes.TracerOption{
				URL:                tr.Endpoint,
				Name:               tr.ServiceName,
				Version:            tr.ServiceVersion,
				Environment:        tr.Environment,
				SamplingRate:       tr.SamplingRate,
				BatchTimeout:       tr.BatchTimeout,
				ExportTimeout:      tr.ExportTimeout,
				MaxExportBatchSize: tr.MaxExportBatchSize,
			}); err != nil {
				logger.Warnf(nil, "tracer initialization failed: %v", err)
			}
		}
	}

	var opts []manager.Option
	if cfg.Data != nil && cfg.Data.Redis != nil && cfg.Data.Redis.Addr != "" {
		client, err := dr.NewClient(cfg.Data.Redis)
		if err != nil {
			logger.Warnf(nil, "redis connection failed, metric snapshots stay in memory: %v", err)
		} else if client != nil {
			opts = append(opts, manager.WithRedisClient(client))
		}
	}

	m, err := manager.New(cfg.Security, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	// Hot-reload governance settings while the process runs.
	config.Watch(func(c *config.Config) {
		logger.Infof(nil, "config reloaded at %s", time.Now().Format(time.RFC3339))
	})

	return m, cleanup, nil
}
