// Package process manages the child processes the editor spawns: the
// interactive shell behind the terminal panel and the interpreter used to
// run the current file.
//
// # Supervisor
//
// The Supervisor starts and tracks children:
//
//	supervisor := process.NewSupervisor(process.WithLogger(logger))
//	defer supervisor.Shutdown(2 * time.Second)
//
//	proc, err := supervisor.Start("python3", exec.Command("python3", path))
//	if err != nil {
//	    return err
//	}
//	out, _ := io.ReadAll(proc.Output)
//	<-proc.Done()
//
// Unless the command already has them, stdin gets a pipe and stdout and
// stderr share a single pipe, so Process.Output yields both streams in the
// order the child wrote them.
//
// # Signals
//
// Every child is started as the leader of its own process group and
// signals go to the whole group, so a shell's own children are stopped
// with it. Stop sends SIGTERM and escalates to SIGKILL after a timeout.
//
// # Thread Safety
//
// Both Supervisor and Process are safe for concurrent use.
package process
