// Package memento provides the content editor and file uploader components of
// the memento application, together with the collaborator interfaces they use
// to reach a hosted backend (session lookup, row insert, blob upload).
//
// Each component instance owns its own state: an Editor or Uploader guards a
// single in-flight remote call, mirroring a form whose submit control is
// disabled while a request is outstanding. Implementations of the collaborator
// interfaces live under the backend subpackages (memory, supabase, postgres,
// dynamodb, s3, fs), and the games live under game/.
package memento
