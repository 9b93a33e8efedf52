package config

import (
	"os"
	"path/filepath"
	"testing"

	. "gopkg.in/check.v1"
)

// Hook check.v1 into `go test`, mirroring the mixed testify/gocheck idiom
// the teacher corpus carries across its suites.
func TestGocheck(t *testing.T) { TestingT(t) }

type LoadSuite struct{}

var _ = Suite(&LoadSuite{})

func (s *LoadSuite) TestOverlayWinsOverDefaults(c *C) {
	dir := c.MkDir()
	defaultsPath := filepath.Join(dir, "defaults.yaml")
	overlayPath := filepath.Join(dir, "overlay.yaml")

	err := os.WriteFile(defaultsPath, []byte(`
SevenZipPath: /usr/bin/7z
DefaultDestinationDir: /backups
LogRetentionCount: 3
SomeFutureKey: true
`), 0o644)
	c.Assert(err, IsNil)

	err = os.WriteFile(overlayPath, []byte(`
DefaultDestinationDir: /mnt/backups
`), 0o644)
	c.Assert(err, IsNil)

	gc, err := Load(defaultsPath, overlayPath)
	c.Assert(err, IsNil)
	c.Check(gc.SevenZipPath, Equals, "/usr/bin/7z")
	c.Check(gc.DefaultDestinationDir, Equals, "/mnt/backups")
	c.Check(gc.LogRetentionCount, Equals, 3)
	c.Check(gc.Extras["SomeFutureKey"], Equals, true)
}

func (s *LoadSuite) TestDeepMergeOfNestedMaps(c *C) {
	dir := c.MkDir()
	defaultsPath := filepath.Join(dir, "defaults.yaml")
	overlayPath := filepath.Join(dir, "overlay.yaml")

	err := os.WriteFile(defaultsPath, []byte(`
BackupTargets:
  nas:
    Type: unc
    TargetSpecificSettings:
      Path: /mnt/nas
`), 0o644)
	c.Assert(err, IsNil)

	err = os.WriteFile(overlayPath, []byte(`
BackupTargets:
  nas:
    TargetSpecificSettings:
      Path: /mnt/nas2
  s3:
    Type: s3
`), 0o644)
	c.Assert(err, IsNil)

	gc, err := Load(defaultsPath, overlayPath)
	c.Assert(err, IsNil)
	c.Check(gc.BackupTargets["nas"].Type, Equals, "unc")
	c.Check(gc.BackupTargets["nas"].TargetSpecificSettings["Path"], Equals, "/mnt/nas2")
	c.Check(gc.BackupTargets["s3"].Type, Equals, "s3")
}

func (s *LoadSuite) TestNoOverlayIsFine(c *C) {
	dir := c.MkDir()
	defaultsPath := filepath.Join(dir, "defaults.yaml")
	err := os.WriteFile(defaultsPath, []byte(`SevenZipPath: /usr/bin/7z`), 0o644)
	c.Assert(err, IsNil)

	gc, err := Load(defaultsPath, "")
	c.Assert(err, IsNil)
	c.Check(gc.SevenZipPath, Equals, "/usr/bin/7z")
}
