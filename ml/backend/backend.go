// backend.go - Registriert alle verfuegbaren Backends
package backend

import (
	_ "github.com/videopred/sv2p/ml/backend/native"
)
