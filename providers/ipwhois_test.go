package providers_test

import (
	"context"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"

	"github.com/rarebird/peerscope/providers"
)

type IPWhoisTestSuite struct {
	MockedProviderTestSuite

	prov *providers.IPWhois
}

func (suite *IPWhoisTestSuite) SetupTest() {
	suite.MockedProviderTestSuite.SetupTest()

	suite.prov = providers.NewIPWhois(suite.http)
}

func (suite *IPWhoisTestSuite) TestName() {
	suite.Equal(providers.NameIPWhois, suite.prov.Name())
}

func (suite *IPWhoisTestSuite) TestLookupOK() {
	httpmock.RegisterResponder("GET", "http://ipwhois.app/json/1.1.1.1",
		httpmock.NewStringResponder(200,
			`{"success":true,"country":"France","city":"Paris","latitude":48.8566,"longitude":2.3522}`))

	loc, err := suite.prov.Lookup(context.Background(), "1.1.1.1")

	suite.NoError(err)
	suite.Equal("France", loc.Country)
	suite.Equal("Paris", loc.City)
	suite.InDelta(48.8566, loc.Latitude, 0.001)
	suite.InDelta(2.3522, loc.Longitude, 0.001)
}

func (suite *IPWhoisTestSuite) TestLookupFailedResponse() {
	httpmock.RegisterResponder("GET", "http://ipwhois.app/json/10.0.0.1",
		httpmock.NewStringResponder(200,
			`{"success":false,"message":"reserved range"}`))

	_, err := suite.prov.Lookup(context.Background(), "10.0.0.1")

	suite.ErrorIs(err, providers.ErrFailedResponse)
}

func (suite *IPWhoisTestSuite) TestLookupBrokenJSON() {
	httpmock.RegisterResponder("GET", "http://ipwhois.app/json/1.1.1.1",
		httpmock.NewStringResponder(200, "{["))

	_, err := suite.prov.Lookup(context.Background(), "1.1.1.1")

	suite.Error(err)
}

func (suite *IPWhoisTestSuite) TestLookupHTTPError() {
	httpmock.RegisterResponder("GET", "http://ipwhois.app/json/1.1.1.1",
		httpmock.NewStringResponder(500, ""))

	_, err := suite.prov.Lookup(context.Background(), "1.1.1.1")

	suite.Error(err)
}

func TestIPWhois(t *testing.T) {
	suite.Run(t, &IPWhoisTestSuite{})
}
