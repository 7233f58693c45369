package providers_test

import (
	"net/http"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"

	"github.com/rarebird/peerscope/geolib"
)

type ProviderTestSuite struct {
	suite.Suite

	http geolib.HTTPClient
}

func (suite *ProviderTestSuite) SetupSuite() {
	suite.http = geolib.NewHTTPClient(http.DefaultClient, "test-agent", time.Millisecond, 100)
}

type MockedProviderTestSuite struct {
	ProviderTestSuite
}

func (suite *MockedProviderTestSuite) SetupSuite() {
	suite.ProviderTestSuite.SetupSuite()

	httpmock.Activate()
}

func (suite *MockedProviderTestSuite) SetupTest() {
	httpmock.Reset()
}

func (suite *MockedProviderTestSuite) TearDownSuite() {
	httpmock.DeactivateAndReset()
}
