// Package workspace provides ephemeral build-and-run directories for ad-hoc source.
//
// Every call to Manager.With gets its own uniquely named directory, so
// concurrent submissions never collide. The directory is removed when the
// callback returns, whatever the outcome:
//
//	mgr := workspace.New(workspace.Config{})
//	err := mgr.With(src, "user_code.c", func(ws *workspace.Workspace) error {
//	    exe := ws.Path("user_code")
//	    // compile ws.SourcePath into exe, run it ...
//	    return nil
//	})
package workspace
