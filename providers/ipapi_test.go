package providers_test

import (
	"context"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"

	"github.com/rarebird/peerscope/providers"
)

type IPAPITestSuite struct {
	MockedProviderTestSuite

	prov *providers.IPAPI
}

func (suite *IPAPITestSuite) SetupTest() {
	suite.MockedProviderTestSuite.SetupTest()

	suite.prov = providers.NewIPAPI(suite.http)
}

func (suite *IPAPITestSuite) TestName() {
	suite.Equal(providers.NameIPAPI, suite.prov.Name())
}

func (suite *IPAPITestSuite) TestLookupOK() {
	httpmock.RegisterResponder("GET", "http://ip-api.com/json/1.1.1.1",
		httpmock.NewStringResponder(200,
			`{"status":"success","country":"Germany","city":"Berlin","lat":52.52,"lon":13.405,"query":"1.1.1.1"}`))

	loc, err := suite.prov.Lookup(context.Background(), "1.1.1.1")

	suite.NoError(err)
	suite.Equal("Germany", loc.Country)
	suite.Equal("Berlin", loc.City)
	suite.InDelta(52.52, loc.Latitude, 0.001)
	suite.InDelta(13.405, loc.Longitude, 0.001)
}

func (suite *IPAPITestSuite) TestLookupFailedStatus() {
	httpmock.RegisterResponder("GET", "http://ip-api.com/json/10.0.0.1",
		httpmock.NewStringResponder(200,
			`{"status":"fail","message":"private range","query":"10.0.0.1"}`))

	_, err := suite.prov.Lookup(context.Background(), "10.0.0.1")

	suite.ErrorIs(err, providers.ErrFailedResponse)
}

func (suite *IPAPITestSuite) TestLookupBrokenJSON() {
	httpmock.RegisterResponder("GET", "http://ip-api.com/json/1.1.1.1",
		httpmock.NewStringResponder(200, "{["))

	_, err := suite.prov.Lookup(context.Background(), "1.1.1.1")

	suite.Error(err)
}

func (suite *IPAPITestSuite) TestLookupHTTPError() {
	httpmock.RegisterResponder("GET", "http://ip-api.com/json/1.1.1.1",
		httpmock.NewStringResponder(500, ""))

	_, err := suite.prov.Lookup(context.Background(), "1.1.1.1")

	suite.Error(err)
}

func (suite *IPAPITestSuite) TestSelf() {
	httpmock.RegisterResponder("GET", "http://ip-api.com/json/",
		httpmock.NewStringResponder(200,
			`{"status":"success","country":"France","city":"Paris","lat":48.8566,"lon":2.3522,"query":"203.0.113.7"}`))

	loc, addr, err := suite.prov.Self(context.Background())

	suite.NoError(err)
	suite.Equal("203.0.113.7", addr)
	suite.Equal("France", loc.Country)
	suite.InDelta(48.8566, loc.Latitude, 0.001)
}

func TestIPAPI(t *testing.T) {
	suite.Run(t, &IPAPITestSuite{})
}
