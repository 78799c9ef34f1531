package app

import (
	"fmt"

	credentialRepository "github.com/allisson/gatekeeper/internal/credential/repository"
	credentialService "github.com/allisson/gatekeeper/internal/credential/service"
	credentialUseCase "github.com/allisson/gatekeeper/internal/credential/usecase"
)

// Signer returns the credential signing service.
func (c *Container) Signer() credentialService.Signer {
	c.signerInit.Do(func() {
		c.signer = credentialService.NewJWTSigner(c.config.SigningSecret)
	})
	return c.signer
}

// CredentialRepository returns the credential registry repository based on database driver.
func (c *Container) CredentialRepository() (credentialUseCase.CredentialRepository, error) {
	var err error
	c.credentialRepoInit.Do(func() {
		c.credentialRepo, err = c.initCredentialRepository()
		if err != nil {
			c.initErrors["credentialRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialRepo"]; exists {
		return nil, storedErr
	}
	return c.credentialRepo, nil
}

// CredentialLifecycle returns the credential lifecycle use case.
func (c *Container) CredentialLifecycle() (credentialUseCase.Lifecycle, error) {
	var err error
	c.lifecycleInit.Do(func() {
		c.lifecycle, err = c.initCredentialLifecycle()
		if err != nil {
			c.initErrors["lifecycle"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["lifecycle"]; exists {
		return nil, storedErr
	}
	return c.lifecycle, nil
}

// initCredentialRepository creates the credential registry repository based on the database driver.
func (c *Container) initCredentialRepository() (credentialUseCase.CredentialRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for credential repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return credentialRepository.NewPostgreSQLCredentialRepository(db), nil
	case "mysql":
		return credentialRepository.NewMySQLCredentialRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initCredentialLifecycle creates the credential lifecycle with all its dependencies.
func (c *Container) initCredentialLifecycle() (credentialUseCase.Lifecycle, error) {
	credentialRepo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for credential lifecycle: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for credential lifecycle: %w", err)
	}

	baseUseCase := credentialUseCase.NewCredentialLifecycle(
		c.config,
		credentialRepo,
		c.Signer(),
		txManager,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for credential lifecycle: %w", err)
		}
		return credentialUseCase.NewLifecycleWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
