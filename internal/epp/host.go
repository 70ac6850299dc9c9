package epp

import "context"

// CreateHost provisions a nameserver object and returns the result code.
// Object-exists comes back as its code rather than an error: re-creating an
// existing glue host during a retry is the expected path, and the caller
// decides whether the code matters.
func (c *Client) CreateHost(ctx context.Context, host Host) (int, error) {
	create := &hostCreate{Name: host.Name}
	for _, ip := range host.IPs {
		create.Addrs = append(create.Addrs, hostAddrFromIP(ip))
	}
	resp, err := c.command(ctx, "host:create", &command{Create: &createCmd{Host: create}})
	if err != nil {
		if IsObjectExists(err) {
			c.logger.Info("host already exists at registry", "host", host.Name)
			return CodeObjectExists, nil
		}
		return 0, err
	}
	return resp.code(), nil
}

// UpdateHostAddrs adds and removes glue addresses on a host object.
// Hostname changes are not expressed as updates; the caller creates the new
// host and removes the old one from the domain's delegation.
func (c *Client) UpdateHostAddrs(ctx context.Context, name string, add, remove []string) error {
	if len(add) == 0 && len(remove) == 0 {
		return nil
	}
	upd := &hostUpdate{Name: name}
	if len(add) > 0 {
		upd.Add = &hostAddRem{Addrs: addrsFromIPs(add)}
	}
	if len(remove) > 0 {
		upd.Rem = &hostAddRem{Addrs: addrsFromIPs(remove)}
	}
	_, err := c.command(ctx, "host:update", &command{Update: &updateCmd{Host: upd}})
	return err
}

// DeleteHost removes a nameserver object from the registry.
func (c *Client) DeleteHost(ctx context.Context, name string) error {
	cmd := &command{Delete: &deleteCmd{Host: &hostDelete{Name: name}}}
	_, err := c.command(ctx, "host:delete", cmd)
	return err
}

// FetchHost retrieves a host object with its glue addresses.
func (c *Client) FetchHost(ctx context.Context, name string) (*Host, error) {
	cmd := &command{Info: &infoCmd{Host: &hostInfo{Name: name}}}
	resp, err := c.command(ctx, "host:info", cmd)
	if err != nil {
		return nil, err
	}
	if resp.ResData == nil || resp.ResData.HostInfo == nil {
		return nil, errMalformedResponse
	}
	host := &Host{Name: resp.ResData.HostInfo.Name}
	for _, a := range resp.ResData.HostInfo.Addrs {
		host.IPs = append(host.IPs, a.IP)
	}
	return host, nil
}

// FetchHosts resolves every nameserver delegated to a domain, including glue
// addresses where present.
func (c *Client) FetchHosts(ctx context.Context, domainName string) ([]Host, error) {
	info, err := c.InfoDomain(ctx, domainName)
	if err != nil {
		return nil, err
	}
	hosts := make([]Host, 0, len(info.Hosts))
	for _, name := range info.Hosts {
		host, err := c.FetchHost(ctx, name)
		if err != nil {
			if IsObjectDoesNotExist(err) {
				hosts = append(hosts, Host{Name: name})
				continue
			}
			return nil, err
		}
		hosts = append(hosts, *host)
	}
	return hosts, nil
}

func addrsFromIPs(ips []string) []hostAddr {
	addrs := make([]hostAddr, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, hostAddrFromIP(ip))
	}
	return addrs
}

func hostAddrFromIP(ip string) hostAddr {
	version := "v4"
	for i := 0; i < len(ip); i++ {
		if ip[i] == ':' {
			version = "v6"
			break
		}
	}
	return hostAddr{Version: version, IP: ip}
}
