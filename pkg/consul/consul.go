package consul

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"resiliencehub/config"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

type ConsulConn struct {
	logger    *zap.SugaredLogger
	cfg       *config.Config
	client    *consulapi.Client
	serviceID string
}

func NewConsulConn(logger *zap.SugaredLogger, cfg *config.Config) *ConsulConn {
	return &ConsulConn{
		logger: logger,
		cfg:    cfg,
	}
}

// Connect registers the service with an HTTP check on /health. It returns nil
// when no Consul address is configured or registration fails.
func (c *ConsulConn) Connect() *consulapi.Client {
	if c.cfg.ConsulAddr == "" {
		c.logger.Info("CONSUL_ADDR not set, skipping service registration")
		return nil
	}

	consulCfg := consulapi.DefaultConfig()
	consulCfg.Address = c.cfg.ConsulAddr

	client, err := consulapi.NewClient(consulCfg)
	if err != nil {
		c.logger.Errorw("Failed to create consul client", "error", err)
		return nil
	}

	registration := c.registration()
	if err := client.Agent().ServiceRegister(registration); err != nil {
		c.logger.Errorw("Failed to register service with consul", "error", err)
		return nil
	}

	c.client = client
	c.serviceID = registration.ID
	c.logger.Infow("Registered with consul", "service_id", c.serviceID, "address", c.cfg.ConsulAddr)

	return client
}

func (c *ConsulConn) Deregister() {
	if c.client == nil {
		return
	}

	if err := c.client.Agent().ServiceDeregister(c.serviceID); err != nil {
		c.logger.Errorw("Failed to deregister service", "service_id", c.serviceID, "error", err)
		return
	}

	c.logger.Infow("Deregistered from consul", "service_id", c.serviceID)
}

func (c *ConsulConn) registration() *consulapi.AgentServiceRegistration {
	host := c.cfg.ServiceHost
	if host == "" {
		host, _ = os.Hostname()
	}
	port, _ := strconv.Atoi(c.cfg.Port)

	return &consulapi.AgentServiceRegistration{
		ID:      fmt.Sprintf("%s-%s", c.cfg.ServiceName, net.JoinHostPort(host, c.cfg.Port)),
		Name:    c.cfg.ServiceName,
		Address: host,
		Port:    port,
		Check: &consulapi.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s/health", net.JoinHostPort(host, c.cfg.Port)),
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
}
