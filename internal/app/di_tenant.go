package app

import (
	"fmt"

	tenantRepository "github.com/allisson/gatekeeper/internal/tenant/repository"
	tenantUseCase "github.com/allisson/gatekeeper/internal/tenant/usecase"
)

// InstallationRepository returns the installation repository based on database driver.
func (c *Container) InstallationRepository() (tenantUseCase.InstallationRepository, error) {
	var err error
	c.installationRepoInit.Do(func() {
		c.installationRepo, err = c.initInstallationRepository()
		if err != nil {
			c.initErrors["installationRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["installationRepo"]; exists {
		return nil, storedErr
	}
	return c.installationRepo, nil
}

// TenantDirectory returns the tenant directory use case.
func (c *Container) TenantDirectory() (tenantUseCase.Directory, error) {
	var err error
	c.directoryInit.Do(func() {
		c.directory, err = c.initTenantDirectory()
		if err != nil {
			c.initErrors["directory"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["directory"]; exists {
		return nil, storedErr
	}
	return c.directory, nil
}

// initInstallationRepository creates the installation repository based on the database driver.
func (c *Container) initInstallationRepository() (tenantUseCase.InstallationRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for installation repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return tenantRepository.NewPostgreSQLInstallationRepository(db), nil
	case "mysql":
		return tenantRepository.NewMySQLInstallationRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTenantDirectory creates the tenant directory with all its dependencies.
// Every module's repository joins the purger list so teardown removes a
// tenant's permission records, channel blocks and credentials in one pass.
func (c *Container) initTenantDirectory() (tenantUseCase.Directory, error) {
	installationRepo, err := c.InstallationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get installation repository for tenant directory: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for tenant directory: %w", err)
	}

	defaultsRepo, err := c.DefaultsRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get defaults repository for tenant directory: %w", err)
	}

	userPermissionRepo, err := c.UserPermissionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user permission repository for tenant directory: %w", err)
	}

	blockRepo, err := c.BlockRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get block repository for tenant directory: %w", err)
	}

	credentialRepo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for tenant directory: %w", err)
	}

	purgers := []tenantUseCase.TenantPurger{
		defaultsRepo,
		userPermissionRepo,
		blockRepo,
		credentialRepo,
	}

	baseUseCase := tenantUseCase.NewTenantDirectory(installationRepo, purgers, txManager, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for tenant directory: %w", err)
		}
		return tenantUseCase.NewDirectoryWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
