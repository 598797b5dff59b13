// Package packagemanager runs a package manager's update command for a project directory.
//
// Each Ecosystem profile pairs the update invocation with the manifest and lock
// files it rewrites; those files are what the change detector inspects and the
// publisher stages.
package packagemanager
