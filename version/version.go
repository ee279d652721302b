// version.go - Versionsinformation fuer sv2p
package version

var Version string = "0.0.0"
