// internal/testutil/fixtures.go
package testutil

// Fixture data para tests (valores primitivos solamente, sin dependencias de domain)

// FixtureDomains contiene dominios de prueba válidos.
var FixtureDomains = []string{
	"example.com",
	"test.example.com",
	"acme.co.uk",
	"xn--bcher-kva.example",
}

// FixtureInvalidDomains contiene dominios inválidos.
var FixtureInvalidDomains = []string{
	"",
	"not a domain",
	"192.168.1.1",
	"2001:db8::1",
	"-invalid.com",
	"invalid-.com",
	".example.com",
	"example..com",
	"localhost",
}

// FixtureEmails contiene emails de prueba.
var FixtureEmails = []string{
	"jane.doe@example.com",
	"contact@example.com",
	"info@sales.example.com",
}

// FixtureAboutPage es una página "about" con un nombre y un cargo.
const FixtureAboutPage = `<!doctype html>
<html><head><title>About us</title></head>
<body>
  <h1>About Example</h1>
  <div class="team">
    <p>John Smith, CEO</p>
  </div>
  <a href="/">Home</a>
</body></html>`

// FixtureContactPage contiene una dirección literal y un mailto.
const FixtureContactPage = `<!doctype html>
<html><head><title>Contact</title></head>
<body>
  <p>Write to jane.doe@example.com for press.</p>
  <a href="/about">About</a>
</body></html>`

// FixtureHomePage enlaza a contacto, about y un asset.
const FixtureHomePage = `<!doctype html>
<html><head><title>Example</title></head>
<body>
  <a href="/blog">Blog</a>
  <a href="/contact#form">Contact us</a>
  <a href="/about">About</a>
  <a href="/logo.png">Logo</a>
  <a href="https://other.org/contact">Elsewhere</a>
</body></html>`
