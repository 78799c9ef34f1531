package app

import (
	"fmt"

	"github.com/allisson/gatekeeper/internal/gateway"
	gatewayHTTP "github.com/allisson/gatekeeper/internal/gateway/http"
)

// Gateway returns the authorization facade composing the credential,
// permission, channel and tenant use cases.
func (c *Container) Gateway() (*gateway.Gateway, error) {
	var err error
	c.gatewayInit.Do(func() {
		c.gateway, err = c.initGateway()
		if err != nil {
			c.initErrors["gateway"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["gateway"]; exists {
		return nil, storedErr
	}
	return c.gateway, nil
}

// AuthorizeHandler returns the authorize HTTP handler.
func (c *Container) AuthorizeHandler() (*gatewayHTTP.AuthorizeHandler, error) {
	var err error
	c.authorizeHandlerInit.Do(func() {
		c.authorizeHandler, err = c.initAuthorizeHandler()
		if err != nil {
			c.initErrors["authorizeHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authorizeHandler"]; exists {
		return nil, storedErr
	}
	return c.authorizeHandler, nil
}

// PermissionHandler returns the permission HTTP handler.
func (c *Container) PermissionHandler() (*gatewayHTTP.PermissionHandler, error) {
	var err error
	c.permissionHandlerInit.Do(func() {
		c.permissionHandler, err = c.initPermissionHandler()
		if err != nil {
			c.initErrors["permissionHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["permissionHandler"]; exists {
		return nil, storedErr
	}
	return c.permissionHandler, nil
}

// ChannelHandler returns the channel HTTP handler.
func (c *Container) ChannelHandler() (*gatewayHTTP.ChannelHandler, error) {
	var err error
	c.channelHandlerInit.Do(func() {
		c.channelHandler, err = c.initChannelHandler()
		if err != nil {
			c.initErrors["channelHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["channelHandler"]; exists {
		return nil, storedErr
	}
	return c.channelHandler, nil
}

// CredentialHandler returns the credential HTTP handler.
func (c *Container) CredentialHandler() (*gatewayHTTP.CredentialHandler, error) {
	var err error
	c.credentialHandlerInit.Do(func() {
		c.credentialHandler, err = c.initCredentialHandler()
		if err != nil {
			c.initErrors["credentialHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialHandler"]; exists {
		return nil, storedErr
	}
	return c.credentialHandler, nil
}

// TenantHandler returns the tenant HTTP handler.
func (c *Container) TenantHandler() (*gatewayHTTP.TenantHandler, error) {
	var err error
	c.tenantHandlerInit.Do(func() {
		c.tenantHandler, err = c.initTenantHandler()
		if err != nil {
			c.initErrors["tenantHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tenantHandler"]; exists {
		return nil, storedErr
	}
	return c.tenantHandler, nil
}

// initGateway creates the authorization facade with all its dependencies.
func (c *Container) initGateway() (*gateway.Gateway, error) {
	lifecycle, err := c.CredentialLifecycle()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential lifecycle for gateway: %w", err)
	}

	resolver, err := c.PermissionResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission resolver for gateway: %w", err)
	}

	guard, err := c.ChannelGuard()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel guard for gateway: %w", err)
	}

	directory, err := c.TenantDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant directory for gateway: %w", err)
	}

	return gateway.NewGateway(lifecycle, resolver, guard, directory), nil
}

// initAuthorizeHandler creates the authorize HTTP handler.
func (c *Container) initAuthorizeHandler() (*gatewayHTTP.AuthorizeHandler, error) {
	gw, err := c.Gateway()
	if err != nil {
		return nil, fmt.Errorf("failed to get gateway for authorize handler: %w", err)
	}
	return gatewayHTTP.NewAuthorizeHandler(gw, c.Logger()), nil
}

// initPermissionHandler creates the permission HTTP handler.
func (c *Container) initPermissionHandler() (*gatewayHTTP.PermissionHandler, error) {
	resolver, err := c.PermissionResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission resolver for permission handler: %w", err)
	}
	return gatewayHTTP.NewPermissionHandler(resolver, c.Logger()), nil
}

// initChannelHandler creates the channel HTTP handler.
func (c *Container) initChannelHandler() (*gatewayHTTP.ChannelHandler, error) {
	guard, err := c.ChannelGuard()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel guard for channel handler: %w", err)
	}
	return gatewayHTTP.NewChannelHandler(guard, c.Logger()), nil
}

// initCredentialHandler creates the credential HTTP handler.
func (c *Container) initCredentialHandler() (*gatewayHTTP.CredentialHandler, error) {
	lifecycle, err := c.CredentialLifecycle()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential lifecycle for credential handler: %w", err)
	}
	return gatewayHTTP.NewCredentialHandler(lifecycle, c.Logger()), nil
}

// initTenantHandler creates the tenant HTTP handler.
func (c *Container) initTenantHandler() (*gatewayHTTP.TenantHandler, error) {
	directory, err := c.TenantDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant directory for tenant handler: %w", err)
	}
	return gatewayHTTP.NewTenantHandler(directory, c.Logger()), nil
}
