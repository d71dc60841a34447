/*
Package resilience provides a circuit breaker for calls to remote services.

The CLI uses it around the compile server client so that a server that is
down fails fast instead of retrying every fixture.

# States

- Closed: requests pass through; failures are counted
- Open: requests fail immediately with ErrCircuitOpen
- Half-Open: up to MaxProbes requests test whether the service recovered

	Closed --[Trip]-> Open --[Cooldown]-> Half-Open --[MaxProbes successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                          Open

# Usage

	breaker := resilience.New("compile-server", resilience.Settings{
		Cooldown: 10 * time.Second,
		Trip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
	})

	res, err := resilience.Do(breaker, func() (*Response, error) {
		return client.Compile(ctx, source)
	})
*/
package resilience
