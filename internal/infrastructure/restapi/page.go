package restapi

const indexTemplateName = "index"

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Connect wallet</title>
<style>
body { font-family: sans-serif; display: flex; flex-direction: column; align-items: center; margin-top: 4rem; }
button { font-size: 1.2rem; padding: 0.6rem 2rem; }
img { margin-top: 1.5rem; }
</style>
</head>
<body>
<button id="connect" {{if .IsInitializing}}disabled{{end}}>Connect</button>
<img id="qr" alt="" hidden>
<ul id="accounts">
{{range .Accounts}}<li>{{.Account}}: {{.Balance}} {{.Symbol}}</li>
{{end}}</ul>
<script>
const button = document.getElementById("connect");
const qr = document.getElementById("qr");
button.addEventListener("click", async () => {
  await fetch("/api/v1/connect", { method: "POST" });
  const poll = setInterval(async () => {
    const res = await fetch("/api/v1/connect/qr.png", { cache: "no-store" });
    if (res.ok) {
      qr.src = URL.createObjectURL(await res.blob());
      qr.hidden = false;
      return;
    }
    qr.hidden = true;
    const session = await (await fetch("/api/v1/session")).json();
    if (session.data.status !== "connecting") {
      clearInterval(poll);
      location.reload();
    }
  }, 1500);
});
</script>
</body>
</html>
`
