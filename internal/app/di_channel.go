package app

import (
	"fmt"

	channelRepository "github.com/allisson/gatekeeper/internal/channel/repository"
	channelUseCase "github.com/allisson/gatekeeper/internal/channel/usecase"
)

// BlockRepository returns the channel block repository based on database driver.
func (c *Container) BlockRepository() (channelUseCase.BlockRepository, error) {
	var err error
	c.blockRepoInit.Do(func() {
		c.blockRepo, err = c.initBlockRepository()
		if err != nil {
			c.initErrors["blockRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["blockRepo"]; exists {
		return nil, storedErr
	}
	return c.blockRepo, nil
}

// ChannelGuard returns the channel guard use case.
func (c *Container) ChannelGuard() (channelUseCase.Guard, error) {
	var err error
	c.guardInit.Do(func() {
		c.guard, err = c.initChannelGuard()
		if err != nil {
			c.initErrors["guard"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["guard"]; exists {
		return nil, storedErr
	}
	return c.guard, nil
}

// initBlockRepository creates the channel block repository based on the database driver.
func (c *Container) initBlockRepository() (channelUseCase.BlockRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for block repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return channelRepository.NewPostgreSQLBlockRepository(db), nil
	case "mysql":
		return channelRepository.NewMySQLBlockRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initChannelGuard creates the channel guard with all its dependencies.
func (c *Container) initChannelGuard() (channelUseCase.Guard, error) {
	blockRepo, err := c.BlockRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get block repository for channel guard: %w", err)
	}

	baseUseCase := channelUseCase.NewChannelGuard(blockRepo, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for channel guard: %w", err)
		}
		return channelUseCase.NewGuardWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
