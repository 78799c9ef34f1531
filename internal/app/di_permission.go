package app

import (
	"fmt"

	permissionRepository "github.com/allisson/gatekeeper/internal/permission/repository"
	permissionUseCase "github.com/allisson/gatekeeper/internal/permission/usecase"
)

// DefaultsRepository returns the tenant defaults repository based on database driver.
func (c *Container) DefaultsRepository() (permissionUseCase.DefaultsRepository, error) {
	var err error
	c.defaultsRepoInit.Do(func() {
		c.defaultsRepo, err = c.initDefaultsRepository()
		if err != nil {
			c.initErrors["defaultsRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["defaultsRepo"]; exists {
		return nil, storedErr
	}
	return c.defaultsRepo, nil
}

// UserPermissionRepository returns the user permission repository based on database driver.
func (c *Container) UserPermissionRepository() (permissionUseCase.UserPermissionRepository, error) {
	var err error
	c.userPermissionRepoInit.Do(func() {
		c.userPermissionRepo, err = c.initUserPermissionRepository()
		if err != nil {
			c.initErrors["userPermissionRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userPermissionRepo"]; exists {
		return nil, storedErr
	}
	return c.userPermissionRepo, nil
}

// PermissionResolver returns the permission resolver use case.
func (c *Container) PermissionResolver() (permissionUseCase.Resolver, error) {
	var err error
	c.resolverInit.Do(func() {
		c.resolver, err = c.initPermissionResolver()
		if err != nil {
			c.initErrors["resolver"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["resolver"]; exists {
		return nil, storedErr
	}
	return c.resolver, nil
}

// initDefaultsRepository creates the tenant defaults repository based on the database driver.
func (c *Container) initDefaultsRepository() (permissionUseCase.DefaultsRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for defaults repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return permissionRepository.NewPostgreSQLDefaultsRepository(db), nil
	case "mysql":
		return permissionRepository.NewMySQLDefaultsRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initUserPermissionRepository creates the user permission repository based on the database driver.
func (c *Container) initUserPermissionRepository() (permissionUseCase.UserPermissionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user permission repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return permissionRepository.NewPostgreSQLUserPermissionRepository(db), nil
	case "mysql":
		return permissionRepository.NewMySQLUserPermissionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initPermissionResolver creates the permission resolver with all its dependencies.
// The credential lifecycle serves as the revoker so permission changes retire
// outstanding credentials.
func (c *Container) initPermissionResolver() (permissionUseCase.Resolver, error) {
	defaultsRepo, err := c.DefaultsRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get defaults repository for permission resolver: %w", err)
	}

	userPermissionRepo, err := c.UserPermissionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user permission repository for permission resolver: %w", err)
	}

	lifecycle, err := c.CredentialLifecycle()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential lifecycle for permission resolver: %w", err)
	}

	baseUseCase := permissionUseCase.NewPermissionResolver(defaultsRepo, userPermissionRepo, lifecycle, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for permission resolver: %w", err)
		}
		return permissionUseCase.NewResolverWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
