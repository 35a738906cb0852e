// Package command runs host programs on behalf of plugins.
//
// Start launches a long running provisioning script and returns at once;
// its output goes to a log file named after the program:
//
//	r := command.New(log, command.WithPrefix("sudo"), command.WithLogDir("/var/log/pablo"))
//	err := r.Start(ctx, "addvhost", "example.com")
//
// Run waits for a short command bound to ctx and returns its output:
//
//	out, err := r.Run(ctx, "ssh-keygen", "-t", "ed25519", "-f", path, "-N", "")
package command
