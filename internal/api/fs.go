package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path"

	"github.com/labstack/echo/v4"

	"github.com/dataq-tools/windaq-data-service/internal/config"
	"github.com/dataq-tools/windaq-data-service/internal/datasource"
)

// File is one entry of a directory listing.
type File struct {
	Filename string `json:"filename"`
	Type     string `json:"type"`
}

func (a *API) GetFileLocations(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Cfg.LocationDetails)
}

func (a *API) GetFileContents(c echo.Context, locationName string, filePath string) error {
	reader, err := datasource.Open(a.Cfg, a.Cache, a.Logger, locationName, filePath)
	if err != nil {
		c.Logger().Error(err)
		return c.String(http.StatusBadRequest, err.Error())
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	contentType := "application/binary"
	if isWDQ(filePath) {
		contentType = "application/x-windaq"
	}
	return c.Stream(http.StatusOK, contentType, reader)
}

func (a *API) GetDirectoryContents(c echo.Context, directoryPath string) error {
	entries, err := os.ReadDir(directoryPath)
	if err != nil {
		c.Logger().Error(err)
		return c.String(http.StatusBadRequest, err.Error())
	}

	filelist := make([]File, len(entries))
	for i, entry := range entries {
		filelist[i].Filename = entry.Name()
		if entry.IsDir() {
			filelist[i].Type = "directory"
		} else {
			filelist[i].Type = "file"
		}
	}
	return c.JSON(http.StatusOK, filelist)
}

func (a *API) GetFileOrDirectory(c echo.Context) error {
	filePath := c.Param("*")
	locationName := c.Param("location")

	var currentLocation config.Location
	for i := range a.Cfg.LocationDetails {
		if a.Cfg.LocationDetails[i].LocationName == locationName {
			currentLocation = a.Cfg.LocationDetails[i]
		}
	}
	if currentLocation.LocationName != locationName {
		err := fmt.Errorf("couldn't find location %s", locationName)
		return c.String(http.StatusBadRequest, err.Error())
	}

	// Listing is only meaningful for directory-backed locations;
	// bucket contents are fetched by name.
	if currentLocation.LocationType != "localFile" {
		err := fmt.Errorf("listing files only supported for localFile location types: %s provided", currentLocation.LocationType)
		return c.String(http.StatusBadRequest, err.Error())
	}

	joinedFilePath := path.Join(currentLocation.Path, filePath)
	fi, err := os.Stat(joinedFilePath)
	if err != nil {
		err := fmt.Errorf("error reading path %s: %s", joinedFilePath, err)
		return c.String(http.StatusBadRequest, err.Error())
	}

	if fi.Mode().IsRegular() {
		return a.GetFileContents(c, locationName, filePath)
	}
	return a.GetDirectoryContents(c, joinedFilePath)
}
